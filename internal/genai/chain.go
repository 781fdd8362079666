package genai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ChainOptions controls pacing of provider calls
type ChainOptions struct {
	// Delay is waited once before the first provider call
	Delay time.Duration
	// Timeout bounds each provider attempt
	Timeout time.Duration
}

// TextChain tries text providers in order until one succeeds
type TextChain struct {
	providers []TextGenerator
	opts      ChainOptions
	log       zerolog.Logger
}

// NewTextChain creates a fallback chain over providers
func NewTextChain(opts ChainOptions, log zerolog.Logger, providers ...TextGenerator) *TextChain {
	return &TextChain{providers: providers, opts: opts, log: log.With().Str("component", "genai").Logger()}
}

// Name lists the chained providers
func (c *TextChain) Name() string {
	return "chain"
}

// GenerateText returns the first successful answer and the provider that produced it
func (c *TextChain) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	text, _, err := c.Generate(ctx, system, prompt)
	return text, err
}

// Generate is GenerateText that also reports the provider name
func (c *TextChain) Generate(ctx context.Context, system, prompt string) (string, string, error) {
	if len(c.providers) == 0 {
		return "", "", ErrNoProvider
	}
	if err := sleep(ctx, c.opts.Delay); err != nil {
		return "", "", err
	}

	var errs []error
	for _, p := range c.providers {
		text, err := c.attempt(ctx, func(ctx context.Context) (string, error) {
			return p.GenerateText(ctx, system, prompt)
		})
		if err == nil {
			return text, p.Name(), nil
		}
		if errors.Is(err, ErrNoProvider) {
			continue
		}
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}
		c.log.Warn().Err(err).Str("provider", p.Name()).Msg("Text provider failed, trying next")
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return "", "", ErrNoProvider
	}
	return "", "", fmt.Errorf("all providers failed: %w", errors.Join(errs...))
}

func (c *TextChain) attempt(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	return fn(ctx)
}

// ImageChain tries image providers in order until one succeeds
type ImageChain struct {
	providers []ImageGenerator
	opts      ChainOptions
	log       zerolog.Logger
}

// NewImageChain creates a fallback chain over image providers
func NewImageChain(opts ChainOptions, log zerolog.Logger, providers ...ImageGenerator) *ImageChain {
	return &ImageChain{providers: providers, opts: opts, log: log.With().Str("component", "genai").Logger()}
}

// Name identifies the chain
func (c *ImageChain) Name() string {
	return "chain"
}

// GenerateImage returns the first successful image
func (c *ImageChain) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	if len(c.providers) == 0 {
		return nil, ErrNoProvider
	}
	if err := sleep(ctx, c.opts.Delay); err != nil {
		return nil, err
	}

	var errs []error
	for _, p := range c.providers {
		attemptCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.opts.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		}
		img, err := p.GenerateImage(attemptCtx, prompt)
		cancel()
		if err == nil {
			return img, nil
		}
		if errors.Is(err, ErrNoProvider) {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("provider", p.Name()).Msg("Image provider failed, trying next")
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil, ErrNoProvider
	}
	return nil, fmt.Errorf("all providers failed: %w", errors.Join(errs...))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
