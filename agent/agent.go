package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/framechat/framechat/cache"
	"github.com/framechat/framechat/engine"
	"github.com/framechat/framechat/sandbox"
)

const tracerName = "github.com/framechat/framechat/agent"

// ErrorBoundary prefixes the user-facing explanation when a question
// cannot be answered. The underlying error text follows it.
const ErrorBoundary = "Unfortunately, I was not able to get your answers, because of the following error:"

// Agent answers natural-language questions over the configured
// datasets. Create one with New. An Agent is safe for concurrent use,
// though interleaved Chat calls share one conversation memory.
type Agent struct {
	cfg Config

	conversationID uuid.UUID
	memory         *Memory

	mu            sync.Mutex
	lastPromptID  uuid.UUID
	lastGenerated string
	lastExecuted  string
	lastResult    engine.Result
	lastError     error
}

// New validates cfg and returns an Agent with a fresh conversation.
func New(cfg Config) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Agent{
		cfg:            cfg,
		conversationID: uuid.New(),
		memory:         NewMemory(cfg.MemorySize),
	}, nil
}

// ConversationID identifies the current conversation.
func (a *Agent) ConversationID() uuid.UUID { return a.conversationID }

// Memory exposes the conversation log, mainly for inspection and tests.
func (a *Agent) Memory() *Memory { return a.memory }

// Chat answers a question with no constraint on the result type.
func (a *Agent) Chat(ctx context.Context, question string) (engine.Result, error) {
	return a.ChatWithOutputType(ctx, question, "")
}

// ChatWithOutputType answers a question, requiring the result to
// satisfy the given output-type hint ("number", "string", "dataframe",
// "plot"; empty accepts anything).
//
// On failure the returned error is the root cause and the returned
// result is a TypeError value carrying the user-facing explanation, so
// callers can surface either.
func (a *Agent) ChatWithOutputType(ctx context.Context, question, outputType string) (engine.Result, error) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "agent.chat")
	span.SetAttributes(attribute.String("agent.conversation_id", a.conversationID.String()))
	defer span.End()

	a.memory.AddUser(question)
	a.setPromptID(uuid.New())

	code, key, fromCache, err := a.generate(ctx, question, outputType)
	if err != nil {
		return a.fail(err)
	}

	res, executed, err := a.execute(ctx, code, question, outputType)
	if err != nil {
		if fromCache {
			if bm, ok := a.cfg.Cache.(cache.BadMarker); ok {
				bm.MarkBad(key, err.Error())
			}
		}
		return a.fail(err)
	}

	if a.cfg.Cache != nil {
		a.cfg.Cache.Set(key, executed)
	}

	answer := sandbox.Stringify(res.Value)
	a.memory.AddAssistant(answer)
	a.mu.Lock()
	a.lastExecuted = executed
	a.lastResult = res
	a.lastError = nil
	a.mu.Unlock()
	span.SetAttributes(attribute.String("agent.result_type", string(res.Type)))
	return res, nil
}

// GenerateCode produces the snippet for a question without executing
// it. The snippet may come from the cache; it is still screened.
func (a *Agent) GenerateCode(ctx context.Context, question string) (string, error) {
	code, _, _, err := a.generate(ctx, question, "")
	return code, err
}

// ExecuteCode runs an already generated snippet against the configured
// datasets, with the agent's retry correction wired in.
func (a *Agent) ExecuteCode(ctx context.Context, code string) (engine.Result, error) {
	question := a.lastUserQuestion()
	res, executed, err := a.execute(ctx, code, question, "")
	if err != nil {
		return a.fail(err)
	}
	a.mu.Lock()
	a.lastExecuted = executed
	a.lastResult = res
	a.lastError = nil
	a.mu.Unlock()
	return res, nil
}

// Train stores question/snippet pairs for few-shot prompt context.
func (a *Agent) Train(ctx context.Context, pairs ...QA) error {
	if a.cfg.Vector == nil {
		return fmt.Errorf("%w: training requires a VectorStore", ErrConfiguration)
	}
	return a.cfg.Vector.AddQuestionAnswer(ctx, pairs)
}

// TrainDocs stores free-form documents for prompt context.
func (a *Agent) TrainDocs(ctx context.Context, docs ...string) error {
	if a.cfg.Vector == nil {
		return fmt.Errorf("%w: training requires a VectorStore", ErrConfiguration)
	}
	return a.cfg.Vector.AddDocs(ctx, docs)
}

// ClearMemory drops the conversation history but keeps the
// conversation identifier.
func (a *Agent) ClearMemory() {
	a.memory.Clear()
}

// StartNewConversation rotates the conversation identifier, clears the
// memory and resets skill usage tracking.
func (a *Agent) StartNewConversation() uuid.UUID {
	a.memory.Clear()
	if a.cfg.Skills != nil {
		a.cfg.Skills.ResetUsed()
	}
	a.conversationID = uuid.New()
	return a.conversationID
}

// LastCodeGenerated returns the most recent snippet obtained from the
// generator or the cache.
func (a *Agent) LastCodeGenerated() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastGenerated
}

// LastCodeExecuted returns the snippet that produced the most recent
// successful result, including any repairs.
func (a *Agent) LastCodeExecuted() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastExecuted
}

// LastResult returns the most recent successful result.
func (a *Agent) LastResult() engine.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastResult
}

// LastError returns the error from the most recent failed turn, nil
// after a success.
func (a *Agent) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastError
}

// LastPromptID identifies the most recent generation request.
func (a *Agent) LastPromptID() uuid.UUID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastPromptID
}

// generate screens the question, consults the cache, and falls back to
// the generator. It returns the snippet, its cache key, and whether it
// came from the cache.
func (a *Agent) generate(ctx context.Context, question, outputType string) (code, key string, fromCache bool, err error) {
	if err := a.cfg.Security.Check(question); err != nil {
		return "", "", false, err
	}

	key = a.cacheKey(question)
	if a.cfg.Cache != nil {
		if cached, ok := a.cfg.Cache.Get(key); ok {
			a.cfg.Logger.Logf("cache hit for question %q", question)
			a.mu.Lock()
			a.lastGenerated = cached
			a.mu.Unlock()
			return cached, key, true, nil
		}
	}

	prompt, err := a.buildPrompt(ctx, question, outputType)
	if err != nil {
		return "", "", false, err
	}
	raw, err := a.cfg.Generator.Generate(ctx, prompt)
	if err != nil {
		return "", "", false, fmt.Errorf("generating snippet: %w", err)
	}
	code = sanitizeSnippet(raw)
	a.mu.Lock()
	a.lastGenerated = code
	a.mu.Unlock()
	return code, key, false, nil
}

// execute builds an engine executor wired to this agent's repair
// callback and runs the snippet.
func (a *Agent) execute(ctx context.Context, code, question, outputType string) (engine.Result, string, error) {
	engCfg := a.cfg.Engine
	engCfg.Skills = a.cfg.Skills
	engCfg.Logger = a.cfg.Logger
	if engCfg.UseErrorCorrection && engCfg.Repair == nil {
		engCfg.Repair = func(ctx context.Context, failing, traceback string) (string, error) {
			prompt, err := a.buildPrompt(ctx, question, outputType)
			if err != nil {
				return "", err
			}
			raw, err := a.cfg.Generator.Repair(ctx, prompt, failing, traceback)
			if err != nil {
				return "", err
			}
			return sanitizeSnippet(raw), nil
		}
	}
	exec, err := engine.New(engCfg)
	if err != nil {
		return engine.Result{}, "", err
	}
	return exec.Execute(ctx, code, a.cfg.Connectors, outputType)
}

// fail records the error, appends the user-facing explanation to the
// conversation, and returns it as a TypeError result alongside the
// root cause.
func (a *Agent) fail(err error) (engine.Result, error) {
	msg := fmt.Sprintf("%s\n%v", ErrorBoundary, err)
	a.memory.AddAssistant(msg)
	a.mu.Lock()
	a.lastError = err
	a.mu.Unlock()
	a.cfg.Logger.Logf("chat turn failed: %v", err)
	return engine.Result{Type: engine.TypeError, Value: msg}, err
}

func (a *Agent) cacheKey(question string) string {
	fingerprints := make([]string, len(a.cfg.Connectors))
	for i, conn := range a.cfg.Connectors {
		fingerprints[i] = conn.SchemaFingerprint()
	}
	return cache.Key(a.cfg.DataSource, fingerprints, cache.NormalizeQuestion(question))
}

func (a *Agent) buildPrompt(ctx context.Context, question, outputType string) (Prompt, error) {
	p := Prompt{
		Question:     question,
		OutputType:   outputType,
		Conversation: a.memory.Conversation(),
	}
	for i, conn := range a.cfg.Connectors {
		p.Datasets = append(p.Datasets, DatasetInfo{Slot: i, Schema: conn.Schema()})
	}
	if a.cfg.Skills != nil {
		for _, name := range a.cfg.Skills.Names() {
			sk, err := a.cfg.Skills.Get(name)
			if err != nil {
				continue
			}
			p.Skills = append(p.Skills, fmt.Sprintf("%s: %s", sk.Name(), sk.Tool.Description))
		}
	}
	if a.cfg.Vector != nil {
		pairs, err := a.cfg.Vector.RelevantQA(ctx, question, trainedContextLimit)
		if err != nil {
			return Prompt{}, fmt.Errorf("querying trained pairs: %w", err)
		}
		p.Examples = pairs
		docs, err := a.cfg.Vector.RelevantDocs(ctx, question, trainedContextLimit)
		if err != nil {
			return Prompt{}, fmt.Errorf("querying trained docs: %w", err)
		}
		p.Docs = docs
	}
	return p, nil
}

func (a *Agent) lastUserQuestion() string {
	msgs := a.memory.All()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].IsUser {
			return msgs[i].Content
		}
	}
	return ""
}

func (a *Agent) setPromptID(id uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastPromptID = id
}
