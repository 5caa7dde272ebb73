package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orgmap-cli/internal/pipeline"
	"github.com/sells-group/orgmap-cli/internal/scrape"
	"github.com/sells-group/orgmap-cli/internal/store"
	"github.com/sells-group/orgmap-cli/pkg/anthropic"
)

// ChainFetcher fetches pages through a scrape chain. It ignores the
// instruction and returns the whole page as markdown.
type ChainFetcher struct {
	chain *scrape.Chain
	guard *Guard
}

// NewChainFetcher creates a ChainFetcher.
func NewChainFetcher(chain *scrape.Chain, guard *Guard) *ChainFetcher {
	return &ChainFetcher{chain: chain, guard: guard}
}

// Fetch implements pipeline.Fetcher.
func (f *ChainFetcher) Fetch(ctx context.Context, url, _ string) (string, error) {
	host := hostOf(url)
	data, err := f.guard.Do(ctx, call{
		service: "fetch:" + host,
		host:    host,
		kind:    store.CacheFetch,
		key:     url,
	}, func(ctx context.Context) ([]byte, error) {
		result, err := f.chain.Scrape(ctx, url)
		if err != nil {
			return nil, err
		}
		zap.L().Debug("source: fetched page",
			zap.String("url", url),
			zap.String("scraper", result.Source),
			zap.Int("chars", len(result.Page.Markdown)),
		)
		return []byte(result.Page.Markdown), nil
	})
	if err != nil {
		return "", eris.Wrapf(err, "source: fetch %s", url)
	}
	return string(data), nil
}

const (
	reducerSystem = "You read company web pages and answer a single instruction about them. " +
		"Use only text that appears on the page. If the page has nothing relevant, answer with an empty response."
	maxReducerInput = 60_000
)

// InstructedFetcher fetches a page through a base fetcher, then has a model
// reduce it to what the instruction asks for. If the model is unavailable
// the full page is returned.
type InstructedFetcher struct {
	base      pipeline.Fetcher
	client    anthropic.Client
	model     string
	maxTokens int64
	guard     *Guard
}

// NewInstructedFetcher creates an InstructedFetcher.
func NewInstructedFetcher(base pipeline.Fetcher, client anthropic.Client, model string, maxTokens int64, guard *Guard) *InstructedFetcher {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &InstructedFetcher{base: base, client: client, model: model, maxTokens: maxTokens, guard: guard}
}

// Fetch implements pipeline.Fetcher.
func (f *InstructedFetcher) Fetch(ctx context.Context, url, instruction string) (string, error) {
	page, err := f.base.Fetch(ctx, url, instruction)
	if err != nil || strings.TrimSpace(instruction) == "" || strings.TrimSpace(page) == "" {
		return page, err
	}

	data, err := f.guard.Do(ctx, call{
		service: "anthropic",
		host:    "api.anthropic.com",
		kind:    store.CacheFetch,
		key:     "reduce|" + f.model + "|" + instruction + "|" + url,
	}, func(ctx context.Context) ([]byte, error) {
		resp, err := f.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     f.model,
			MaxTokens: f.maxTokens,
			System:    reducerSystem,
			Messages:  []anthropic.Message{{Role: "user", Content: reducerPrompt(url, instruction, page)}},
		})
		if err != nil {
			return nil, err
		}
		resp.Usage.LogCost(f.model, "fetch")
		return []byte(strings.TrimSpace(resp.Text())), nil
	})
	if err != nil {
		zap.L().Warn("source: page reduction failed, using full page",
			zap.String("url", url),
			zap.Error(err),
		)
		return page, nil
	}
	return string(data), nil
}

func reducerPrompt(url, instruction, page string) string {
	if len(page) > maxReducerInput {
		page = page[:maxReducerInput]
	}
	return fmt.Sprintf("Instruction: %s\n\nPage URL: %s\n\n<page>\n%s\n</page>", instruction, url, page)
}
