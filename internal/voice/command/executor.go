package command

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/in2theCODE/MyCODEagent/internal/registry"
)

const (
	maxAttempts = 3
	retryDelay  = time.Second
)

// Default spoken responses used when a command template does not supply
// its own message.
const (
	msgUnknownCommand = "I don't recognize that command. Could you rephrase it?"
	msgNotImplemented = "That command isn't wired up yet."
	msgApology        = "I'm sorry, I couldn't complete that command. Please try again later."
)

// Outcome is the result of one Execute call.
type Outcome struct {
	// Command is the name of the resolved command, empty when nothing
	// matched.
	Command string

	// Executed is true when the registry handler ran and reported success.
	Executed bool
	// NeedsConfirmation is true when execution was deferred pending a spoken
	// confirmation. Message then carries the confirmation prompt.
	NeedsConfirmation bool
	// Message is the response to speak to the user. Empty on a retryable
	// failure that produced no user-facing explanation.
	Message string
	// Params holds the parameter values extracted from the utterance.
	Params map[string]string
}

// Executor validates parameters and drives registry invocation for matched
// commands. All parameters are validated before any side effect: a single
// invalid or missing required parameter aborts the whole execution.
//
// Commands flagged confirmation_required are parked rather than run; the
// caller speaks the returned prompt and later settles the pending execution
// with Confirm or Cancel.
type Executor struct {
	reg registry.Registry

	mu      sync.Mutex
	pending *pendingExecution
}

type pendingExecution struct {
	cmd    *Command
	params map[string]string
}

// NewExecutor returns an Executor dispatching through reg.
func NewExecutor(reg registry.Registry) *Executor {
	return &Executor{reg: reg}
}

// Execute extracts and validates cmd's parameters from text, then either
// defers for confirmation or invokes the registry handler. The returned
// error is the handler's transport error and signals a retryable failure;
// validation problems are reported through Outcome.Message instead.
func (e *Executor) Execute(ctx context.Context, cmd *Command, text string) (Outcome, error) {
	params := Extract(cmd, text)

	for _, p := range cmd.Parameters {
		value, present := params[p.Name]
		if !present || value == "" {
			if p.Required {
				return Outcome{Command: cmd.Name, Message: missingPrompt(p), Params: params}, nil
			}
			continue
		}
		if !Validate(p, value) {
			return Outcome{Command: cmd.Name, Message: invalidPrompt(p), Params: params}, nil
		}
	}

	if cmd.ConfirmationRequired {
		e.mu.Lock()
		e.pending = &pendingExecution{cmd: cmd, params: params}
		e.mu.Unlock()
		prompt := cmd.ConfirmationPrompt
		if prompt == "" {
			prompt = "Are you sure you want to " + cmd.Name + "?"
		}
		return Outcome{Command: cmd.Name, NeedsConfirmation: true, Message: FormatMessage(prompt, params), Params: params}, nil
	}

	return e.invoke(ctx, cmd, params)
}

// Confirm runs the execution parked by the last confirmation-required
// command. It reports false when nothing is pending.
func (e *Executor) Confirm(ctx context.Context) (Outcome, bool, error) {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	if pending == nil {
		return Outcome{}, false, nil
	}
	out, err := e.invoke(ctx, pending.cmd, pending.params)
	return out, true, err
}

// Cancel discards any pending execution and reports whether one was waiting.
func (e *Executor) Cancel() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	had := e.pending != nil
	e.pending = nil
	return had
}

// HasPending reports whether an execution is parked awaiting confirmation.
func (e *Executor) HasPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending != nil
}

func (e *Executor) invoke(ctx context.Context, cmd *Command, params map[string]string) (Outcome, error) {
	if e.reg == nil || !e.reg.Has(cmd.Name) {
		slog.Warn("command: no handler registered", "command", cmd.Name)
		return Outcome{Command: cmd.Name, Message: msgNotImplemented, Params: params}, nil
	}

	args := make([]string, 0, len(cmd.Parameters))
	for _, p := range cmd.Parameters {
		if v, ok := params[p.Name]; ok {
			args = append(args, v)
		}
	}

	res, err := e.reg.Invoke(ctx, cmd.Name, args, params)
	if err != nil {
		slog.Error("command: handler error", "command", cmd.Name, "error", err)
		return Outcome{Command: cmd.Name, Params: params}, err
	}
	if !res.Success {
		slog.Warn("command: handler reported failure",
			"command", cmd.Name, "error", res.Error)
		msg := cmd.ErrorMessage
		if msg == "" {
			msg = res.Error
		}
		return Outcome{Command: cmd.Name, Message: FormatMessage(msg, params), Params: params}, nil
	}

	// The handler's output is exposed to the template as {output}.
	msgParams := params
	if res.Output != "" {
		msgParams = make(map[string]string, len(params)+1)
		for k, v := range params {
			msgParams[k] = v
		}
		msgParams["output"] = res.Output
	}
	msg := FormatMessage(cmd.SuccessMessage, msgParams)
	if res.Output != "" && cmd.SuccessMessage == "" {
		msg = res.Output
	}
	return Outcome{Command: cmd.Name, Executed: true, Message: msg, Params: params}, nil
}

func missingPrompt(p Parameter) string {
	if p.Prompt != "" {
		return p.Prompt
	}
	return "I need the " + p.Name + " to do that."
}

func invalidPrompt(p Parameter) string {
	if p.Prompt != "" {
		return p.Prompt
	}
	return "That doesn't look like a valid " + p.Name + "."
}

// Processor matches free-form utterances to commands and runs them with a
// bounded retry loop. Only silent failures are retried: a handler error or a
// failure that produced no spoken message. Anything with a message, including
// validation prompts and confirmation prompts, goes straight back to the user.
type Processor struct {
	matcher  *Matcher
	executor *Executor

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewProcessor returns a Processor over matcher and executor.
func NewProcessor(matcher *Matcher, executor *Executor) *Processor {
	return &Processor{matcher: matcher, executor: executor, sleep: time.Sleep}
}

// ProcessCommand resolves text to a command and executes it, retrying up to
// three attempts with a one second pause between them. The returned Outcome
// always carries a speakable Message.
func (p *Processor) ProcessCommand(ctx context.Context, text string) Outcome {
	cmd, ok := p.matcher.Find(text)
	if !ok {
		slog.Info("command: no match", "text", text)
		return Outcome{Message: msgUnknownCommand}
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := p.executor.Execute(ctx, cmd, text)
		if err == nil && out.Message != "" {
			return out
		}
		if err == nil && out.Executed {
			out.Message = "Done."
			return out
		}
		if err == nil {
			slog.Warn("command: attempt produced no result",
				"command", cmd.Name, "attempt", attempt)
		}
		if attempt < maxAttempts {
			p.sleep(retryDelay)
		}
	}

	slog.Error("command: attempts exhausted", "command", cmd.Name, "attempts", maxAttempts)
	return Outcome{Command: cmd.Name, Message: msgApology}
}
