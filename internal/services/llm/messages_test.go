package llm

import (
	"testing"

	"google.golang.org/genai"

	"github.com/omerch/updatescout/internal/interfaces"
)

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "you are an advisor"},
		{Role: "user", Content: "should I update?"},
		{Role: "assistant", Content: "tell me your device"},
		{Role: "system", Content: "second system message"},
		{Role: "user", Content: "galaxy s24"},
	}

	converted, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		t.Fatalf("convertMessagesToClaude: %v", err)
	}
	if systemText != "you are an advisor" {
		t.Errorf("Expected first system message extracted, got %q", systemText)
	}
	if len(converted) != 3 {
		t.Fatalf("Expected 3 non-system messages, got %d", len(converted))
	}
	if converted[0].Role != "user" || converted[1].Role != "assistant" || converted[2].Role != "user" {
		t.Errorf("Unexpected role order: %s, %s, %s", converted[0].Role, converted[1].Role, converted[2].Role)
	}
}

func TestConvertMessagesToClaudeErrors(t *testing.T) {
	if _, _, err := convertMessagesToClaude(nil); err == nil {
		t.Error("Expected error for empty input")
	}

	systemOnly := []interfaces.Message{{Role: "system", Content: "no user here"}}
	if _, _, err := convertMessagesToClaude(systemOnly); err == nil {
		t.Error("Expected error when no user message is present")
	}
}

func TestConvertMessagesToGemini(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "you are an advisor"},
		{Role: "user", Content: "should I update?"},
		{Role: "assistant", Content: "tell me your device"},
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		t.Fatalf("convertMessagesToGemini: %v", err)
	}
	if systemText != "you are an advisor" {
		t.Errorf("Expected system message extracted, got %q", systemText)
	}
	if len(contents) != 2 {
		t.Fatalf("Expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != genai.RoleUser {
		t.Errorf("Expected user role, got %q", contents[0].Role)
	}
	if contents[1].Role != genai.RoleModel {
		t.Errorf("Expected model role for assistant message, got %q", contents[1].Role)
	}
	if len(contents[0].Parts) == 0 || contents[0].Parts[0].Text != "should I update?" {
		t.Errorf("Expected user text preserved, got %+v", contents[0].Parts)
	}
}

func TestConvertMessagesToGeminiErrors(t *testing.T) {
	if _, _, err := convertMessagesToGemini(nil); err == nil {
		t.Error("Expected error for empty input")
	}

	systemOnly := []interfaces.Message{{Role: "system", Content: "no user here"}}
	if _, _, err := convertMessagesToGemini(systemOnly); err == nil {
		t.Error("Expected error when only system messages are present")
	}
}
