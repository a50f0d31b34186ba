package usage

import (
	"testing"
	"time"

	"github.com/sheldon123z/ArxivLearner-sub001/internal/llm"
	"github.com/sheldon123z/ArxivLearner-sub001/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupService 创建带内存库的用量服务
func setupService(t *testing.T) (*Service, *Repository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(&models.UsageRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	repo := NewRepository(db)
	return NewService(repo), repo
}

func priceModel(input, output float64) *models.Model {
	return &models.Model{
		ID:          1,
		DisplayName: "GPT-4o",
		InputPrice:  &input,
		OutputPrice: &output,
	}
}

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"空串", "", 0},
		{"纯英文", "hello world!", 4}, // 12 字符 / 3
		{"纯中文", "论文阅读助手", 4},      // 6*2 / 3
		{"极短内容至少 1", "a", 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateTokens(tc.text); got != tc.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tc.text, got, tc.want)
			}
		})
	}
}

func TestEstimateMessagesTokens(t *testing.T) {
	messages := []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: "hello world!"},
		{Role: llm.RoleUser, Content: "论文阅读助手"},
	}
	if got := EstimateMessagesTokens(messages); got != 8 {
		t.Errorf("EstimateMessagesTokens() = %d, want 8", got)
	}
}

func TestCalculateCost(t *testing.T) {
	model := priceModel(2.5, 10.0)

	got := CalculateCost(model, 1_000_000, 500_000)
	want := 2.5 + 5.0
	if got != want {
		t.Errorf("CalculateCost() = %v, want %v", got, want)
	}
}

func TestCalculateCost_MissingPricesAreZero(t *testing.T) {
	model := &models.Model{DisplayName: "free-model"}
	if got := CalculateCost(model, 1000, 1000); got != 0 {
		t.Errorf("CalculateCost() without prices = %v, want 0", got)
	}
}

func TestRecordCall_ReportedUsagePreferred(t *testing.T) {
	service, _ := setupService(t)

	record, err := service.RecordCall(priceModel(1, 2), "TestProvider",
		[]llm.ChatMessage{{Role: llm.RoleUser, Content: "some long input message"}},
		"response", llm.Usage{InputTokens: 100, OutputTokens: 50}, "chat")
	if err != nil {
		t.Fatalf("RecordCall() failed: %v", err)
	}

	if record.InputTokens != 100 || record.OutputTokens != 50 {
		t.Errorf("reported usage should be used as-is: %+v", record)
	}
	if record.ProviderName != "TestProvider" || record.ModelName != "GPT-4o" {
		t.Errorf("denormalized names wrong: %+v", record)
	}
}

func TestRecordCall_ZeroReportedFallsBackToEstimate(t *testing.T) {
	service, _ := setupService(t)

	record, err := service.RecordCall(priceModel(1, 2), "TestProvider",
		[]llm.ChatMessage{{Role: llm.RoleUser, Content: "hello world!"}},
		"hello world!", llm.Usage{}, "chat")
	if err != nil {
		t.Fatalf("RecordCall() failed: %v", err)
	}

	if record.InputTokens != 4 || record.OutputTokens != 4 {
		t.Errorf("zero reported usage should fall back to estimation, got input=%d output=%d",
			record.InputTokens, record.OutputTokens)
	}
}

func TestRepository_Summarize(t *testing.T) {
	service, repo := setupService(t)

	for i := 0; i < 3; i++ {
		_, err := service.RecordCall(priceModel(1, 2), "TestProvider",
			[]llm.ChatMessage{{Role: llm.RoleUser, Content: "hi"}},
			"ok", llm.Usage{InputTokens: 10, OutputTokens: 5}, "chat")
		if err != nil {
			t.Fatalf("RecordCall() failed: %v", err)
		}
	}

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	summary, err := repo.Summarize(from, to)
	if err != nil {
		t.Fatalf("Summarize() failed: %v", err)
	}

	if summary.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", summary.TotalRequests)
	}
	if summary.InputTokens != 30 || summary.OutputTokens != 15 {
		t.Errorf("token totals wrong: %+v", summary)
	}

	records, err := repo.FindByDateRange(from, to)
	if err != nil {
		t.Fatalf("FindByDateRange() failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("FindByDateRange() = %d records, want 3", len(records))
	}
}

func TestRepository_Summarize_EmptyRange(t *testing.T) {
	_, repo := setupService(t)

	summary, err := repo.Summarize(time.Now().Add(-time.Hour), time.Now())
	if err != nil {
		t.Fatalf("Summarize() failed: %v", err)
	}
	if summary.TotalRequests != 0 || summary.TotalCost != 0 {
		t.Errorf("empty range should summarize to zeros: %+v", summary)
	}
}
