package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

const (
	modelName = "gemini-2.0-flash-001"
	// maxToolRounds bounds how many tool calls one question may chain.
	maxToolRounds = 5
)

var ErrNoAnswer = errors.New("assistant returned no answer")

// Agent answers back-office questions about stock, members and sales
// by letting Gemini call the tools in tools.go.
type Agent struct {
	db     *gorm.DB
	apiKey string
	now    func() time.Time
}

func NewAgent(db *gorm.DB, apiKey string) *Agent {
	return &Agent{db: db, apiKey: apiKey, now: time.Now}
}

func (a *Agent) Enabled() bool { return a != nil && a.apiKey != "" }

func (a *Agent) systemPrompt(userMessage string) string {
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the back-office assistant of a cooperative shop.

	RULES:
	1. STOCK: For questions about a product's price, member price or stock, call 'check_inventory'
	   (pass a name fragment as 'query' when the user names a product). For what needs reordering, call 'low_stock'.
	2. MEMBERS: Members are identified by codes like IBS000001. Use 'member_points' for points and savings.
	3. INSTALLMENTS: Transaction numbers look like SAL20260310000001. Use 'installment_schedule' for due dates.
	4. SALES: If the user asks for sales/revenue, use 'get_sales_report'.
	5. Amounts are in Rupiah. Never invent numbers the tools did not return.

	USER: %s`, a.now().Format("2006-01-02"), userMessage)
}

// Ask runs one question through the model, executing the tool calls it makes.
func (a *Agent) Ask(ctx context.Context, userMessage string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(modelName)
	model.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(a.systemPrompt(userMessage)))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return textOf(resp)
		}

		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			result, err := ExecuteTool(a.db.WithContext(ctx), call.Name, call.Args)
			if err != nil {
				log.Printf("[ai] tool %s failed: %v", call.Name, err)
				result = map[string]interface{}{"error": err.Error()}
			}
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: result})
		}

		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", err
		}
	}
	return textOf(resp)
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func textOf(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoAnswer
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt), nil
		}
	}
	return "I completed the action.", nil
}
