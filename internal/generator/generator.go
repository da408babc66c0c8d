// Package generator runs the tool-calling conversation protocol against the
// OpenAI chat completions API and returns final answer text.
package generator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v2"

	"github.com/mike-a-ellis/course-rag/internal/tools"
)

// systemPrompt is static so it is not rebuilt on each call.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content with access to comprehensive tools for course information.

Available Tools:
1. **Content Search Tool**: For finding specific course content and detailed educational materials
2. **Course Outline Tool**: For getting complete course structure including course title, course link, instructor, and all lessons with their titles and numbers

Tool Usage Guidelines:
- **Course outline/structure questions**: Use the course outline tool to get course title, course link, instructor, and complete lesson list
- **Specific content questions**: Use the content search tool for detailed educational materials
- **One tool call per query maximum**
- Synthesize tool results into accurate, fact-based responses
- If tools yield no results, state this clearly without offering alternatives

Response Protocol:
- **General knowledge questions**: Answer using existing knowledge without using tools
- **Course outline questions**: Use course outline tool first, then provide complete course information
- **Course-specific content questions**: Use content search tool first, then answer
- **No meta-commentary**:
 - Provide direct answers only — no reasoning process, tool explanations, or question-type analysis
 - Do not mention "based on the tool results" or "using the outline tool"

All responses must be:
1. **Brief, Concise and focused** - Get to the point quickly
2. **Educational** - Maintain instructional value
3. **Clear** - Use accessible language
4. **Example-supported** - Include relevant examples when they aid understanding
Provide only the direct answer to what was asked.`

// maxAnswerTokens caps each completion.
const maxAnswerTokens = 800

// ChatService is the LLM boundary. The production implementation wraps the
// OpenAI client; tests substitute a fake.
type ChatService interface {
	New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type openaiChat struct {
	client *openai.Client
}

// NewChatService wraps an OpenAI client as a ChatService.
func NewChatService(client *openai.Client) ChatService {
	return &openaiChat{client: client}
}

func (s *openaiChat) New(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return s.client.Chat.Completions.New(ctx, params)
}

// Generator mediates between the LLM service and the tool registry. The
// protocol has exactly two states: a direct answer, or one tool round trip
// followed by a final answer. The bound is structural - the follow-up request
// carries no tool schema - not enforced by a counter.
type Generator struct {
	chat  ChatService
	model string
}

// New creates a Generator for the given chat model.
func New(chat ChatService, model string) *Generator {
	return &Generator{chat: chat, model: model}
}

// GenerateResponse answers the query, optionally consulting the registered
// tools, and returns the sources cited by this turn's tool calls in call
// order. Sources live only in the return value, so concurrent turns never
// share attribution state. history, when non-empty, is appended to the system
// instructions as previous-conversation context. Transport failures and tool
// faults are fatal for the turn; tool-reported misses come back to the model
// as result text.
func (g *Generator) GenerateResponse(ctx context.Context, query, history string, defs []tools.Definition, registry *tools.Registry) (string, []tools.Source, error) {
	system := systemPrompt
	if history != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", systemPrompt, history)
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(query),
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Messages:    messages,
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(maxAnswerTokens),
	}
	if len(defs) > 0 {
		params.Tools = toOpenAITools(defs)
	}

	resp, err := g.chat.New(ctx, params)
	if err != nil {
		return "", nil, fmt.Errorf("chat completion failed: %w", err)
	}
	choice := resp.Choices[0]

	if choice.FinishReason == "tool_calls" && registry != nil {
		return g.executeToolRound(ctx, messages, choice.Message, registry)
	}
	return choice.Message.Content, nil, nil
}

// executeToolRound dispatches every requested tool call in order, appends one
// tool-result message per call, and sends the single follow-up request. The
// accumulated sources belong to this turn alone.
func (g *Generator) executeToolRound(
	ctx context.Context,
	messages []openai.ChatCompletionMessageParamUnion,
	assistant openai.ChatCompletionMessage,
	registry *tools.Registry,
) (string, []tools.Source, error) {
	messages = append(messages, assistant.ToParam())

	var sources []tools.Source
	for _, call := range assistant.ToolCalls {
		if call.Type != "function" {
			continue
		}

		var args map[string]any
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return "", nil, fmt.Errorf("parse arguments for tool %s: %w", call.Function.Name, err)
		}

		result, callSources, err := registry.Dispatch(ctx, call.Function.Name, args)
		if err != nil {
			return "", nil, fmt.Errorf("execute tool %s: %w", call.Function.Name, err)
		}
		sources = append(sources, callSources...)
		messages = append(messages, openai.ToolMessage(result, call.ID))
	}

	// No tool schema on the follow-up request: tool results are never
	// re-offered tools, which bounds the protocol to one round trip.
	resp, err := g.chat.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(g.model),
		Messages:    messages,
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(maxAnswerTokens),
	})
	if err != nil {
		return "", nil, fmt.Errorf("follow-up chat completion failed: %w", err)
	}
	return resp.Choices[0].Message.Content, sources, nil
}

// toOpenAITools translates internal tool definitions into the OpenAI
// function-calling format.
func toOpenAITools(defs []tools.Definition) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, def := range defs {
		properties := make(map[string]any, len(def.InputSchema.Properties))
		for name, prop := range def.InputSchema.Properties {
			properties[name] = map[string]any{
				"type":        prop.Type,
				"description": prop.Description,
			}
		}

		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        def.Name,
			Description: openai.String(def.Description),
			Parameters: openai.FunctionParameters{
				"type":       def.InputSchema.Type,
				"properties": properties,
				"required":   def.InputSchema.Required,
			},
		}))
	}
	return out
}
