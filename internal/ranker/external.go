package ranker

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/XiaoConstantine/dspy-go/pkg/core"
	"github.com/XiaoConstantine/dspy-go/pkg/llms"
	"github.com/XiaoConstantine/dspy-go/pkg/modules"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"

	"github.com/aipinyin/engine/internal/vocab"
)

const externalCallTimeout = 10 * time.Second

// ExternalScorer implements Scorer against an OpenAI-compatible HTTP
// endpoint (ai.endpoint in configuration) instead of a local model
// session. Each ScoreNext call asks the remote model for a distribution
// over plausible next characters and converts it into a full-vocabulary
// logit vector: named characters get log(probability), everything else
// gets negative infinity. This keeps the rest of the ranker (masking,
// beam search, rerank blending) identical regardless of which Scorer
// backs it.
type ExternalScorer struct {
	predictor *modules.Predict
	vocab     *vocab.Vocab
	logger    *log.Logger
}

// NewExternalScorer builds an ExternalScorer talking to baseURL/model
// using apiKey, instructing the remote model with systemPrompt.
func NewExternalScorer(baseURL, apiKey, model, systemPrompt string, v *vocab.Vocab, logger *log.Logger) (*ExternalScorer, error) {
	if logger == nil {
		logger = log.Default()
	}
	llms.EnsureFactory()

	path, base, err := splitEndpoint(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ai.endpoint %q: %w", baseURL, err)
	}
	llm, err := llms.NewOpenAILLM(
		core.ModelID(model),
		llms.WithAPIKey(apiKey),
		llms.WithOpenAIBaseURL(base),
		llms.WithOpenAIPath(path),
		llms.WithOpenAITimeout(externalCallTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize external ranker llm: %w", err)
	}

	instruction := systemPrompt
	if instruction == "" {
		instruction = "Given a Hanyu Pinyin context, propose the most likely next Chinese characters " +
			"and a relative confidence score for each, as a JSON object mapping character to score."
	}
	sig := core.NewSignature(
		[]core.InputField{
			{Field: core.NewField("context", core.WithDescription("Recently typed/committed Chinese text, as context"))},
		},
		[]core.OutputField{
			{Field: core.NewField("scores", core.WithDescription("JSON object: character -> relative confidence score"))},
		},
	).WithInstruction(instruction)

	predictor := modules.NewPredict(sig).WithStructuredOutput()
	predictor.SetLLM(llm)

	return &ExternalScorer{predictor: predictor, vocab: v, logger: logger}, nil
}

// ScoreNext asks the remote model to score next-character continuations
// for the given context ids, decoded back to text via vocab, and returns
// a full-vocabulary logit vector.
func (e *ExternalScorer) ScoreNext(ctx context.Context, ids []int32) ([]float32, error) {
	contextText := e.decodeContext(ids)

	var raw map[string]any
	err := retry.Do(ctx, retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond)), func(ctx context.Context) error {
		res, callErr := e.predictor.Process(ctx, map[string]any{"context": contextText})
		if callErr != nil {
			e.logger.Printf("external ranker call failed, retrying: err=%v", callErr)
			return retry.RetryableError(callErr)
		}
		raw = res
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("external ranker score_next: %w", err)
	}

	scores := parseScores(raw["scores"])
	if len(scores) == 0 {
		return nil, fmt.Errorf("external ranker score_next: empty scores response")
	}

	logits := make([]float32, len(e.vocab.IDToChar)+1)
	for i := range logits {
		logits[i] = float32(math.Inf(-1))
	}
	for ch, score := range scores {
		id, ok := e.vocab.CharToID[ch]
		if !ok || int(id) >= len(logits) {
			continue
		}
		logits[id] = float32(math.Log(score + 1e-6))
	}
	return logits, nil
}

func (e *ExternalScorer) decodeContext(ids []int32) string {
	var b strings.Builder
	for _, id := range ids {
		if id == e.vocab.Special.CLS || id == e.vocab.Special.SEP || id == e.vocab.Special.PAD {
			continue
		}
		if ch, ok := e.vocab.IDToChar[id]; ok {
			b.WriteString(ch)
		}
	}
	return b.String()
}

func parseScores(v any) map[string]float64 {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	parsed := gjson.Parse(s)
	if !parsed.IsObject() {
		return nil
	}
	out := make(map[string]float64)
	parsed.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = value.Float()
		return true
	})
	return out
}

func splitEndpoint(rawBaseURL string) (path, base string, err error) {
	baseURL := strings.TrimRight(strings.TrimSpace(rawBaseURL), "/")
	if baseURL == "" {
		return "", "", fmt.Errorf("must be a full URL ending with /v1")
	}
	if !strings.HasSuffix(baseURL, "/v1") {
		return "", "", fmt.Errorf("path must end with /v1")
	}
	return "/chat/completions", baseURL, nil
}
