// ABOUTME: AWS Bedrock client implementing the llm.Client interface via the
// ABOUTME: Converse API, which normalizes across Bedrock-hosted models.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// DefaultBedrockRegion is used when a request does not name a region.
const DefaultBedrockRegion = "us-east-1"

// BedrockClient implements Client for AWS Bedrock. Credentials come from
// the standard AWS chain (env, shared config, instance role).
type BedrockClient struct {
	client *bedrockruntime.Client
	model  string
}

// NewBedrockClient creates a Bedrock client in the given region.
func NewBedrockClient(ctx context.Context, region, model string) (*BedrockClient, error) {
	if region == "" {
		region = DefaultBedrockRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &BedrockClient{
		client: bedrockruntime.NewFromConfig(cfg),
		model:  model,
	}, nil
}

// CreateMessage sends a Converse request and returns the response.
func (b *BedrockClient) CreateMessage(ctx context.Context, req *Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = b.model
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(model),
	}

	var system []string
	if req.System != "" {
		system = append(system, req.System)
	}
	for _, msg := range req.Messages {
		if msg.Role == RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		role := brtypes.ConversationRoleUser
		if msg.Role == RoleAssistant {
			role = brtypes.ConversationRoleAssistant
		}
		input.Messages = append(input.Messages, brtypes.Message{
			Role:    role,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: msg.Content}},
		})
	}
	for _, s := range system {
		input.System = append(input.System, &brtypes.SystemContentBlockMemberText{Value: s})
	}

	inference := &brtypes.InferenceConfiguration{}
	if req.MaxTokens > 0 {
		inference.MaxTokens = aws.Int32(int32(req.MaxTokens))
	}
	if req.Temperature != nil {
		inference.Temperature = aws.Float32(float32(*req.Temperature))
	}
	input.InferenceConfig = inference

	out, err := b.client.Converse(ctx, input)
	if err != nil {
		return nil, err
	}

	resp := &Response{Model: model}
	if out.Usage != nil {
		resp.Usage = Usage{
			InputTokens:  int(aws.ToInt32(out.Usage.InputTokens)),
			OutputTokens: int(aws.ToInt32(out.Usage.OutputTokens)),
			TotalTokens:  int(aws.ToInt32(out.Usage.TotalTokens)),
		}
	}

	if msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage); ok {
		var text strings.Builder
		for _, block := range msg.Value.Content {
			if t, ok := block.(*brtypes.ContentBlockMemberText); ok {
				text.WriteString(t.Value)
			}
		}
		resp.Content = text.String()
	}

	return resp, nil
}

// Compile-time interface assertion.
var _ Client = (*BedrockClient)(nil)
