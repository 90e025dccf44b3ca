package prompt_test

import (
	"strings"
	"testing"

	"github.com/randomtoy/faas-go/internal/domain"
	"github.com/randomtoy/faas-go/internal/prompt"
)

const constraint = "限制：正文不要提及星座、MBTI或常驻城市等个人画像信息。"

func testBuilder() *prompt.Builder {
	return prompt.NewBuilder("pro-model", "flash-model")
}

func testProfile() domain.UserProfile {
	return domain.UserProfile{
		Constellation: "双子",
		BirthDate:     "1995-06-15",
		MBTI:          "INFJ",
		City:          "上海",
	}
}

func testSpread() []domain.DrawnCard {
	return []domain.DrawnCard{
		{Card: domain.Card{Name: "愚者"}, Upright: true},
		{Card: domain.Card{Name: "恋人"}, Upright: false},
		{Card: domain.Card{Name: "星星"}, Upright: true},
	}
}

func TestCardsInfo(t *testing.T) {
	got := prompt.CardsInfo(testSpread())
	want := "位置 1：愚者 (正位)；位置 2：恋人 (逆位)；位置 3：星星 (正位)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTarot_NonVIPExcludesProfile(t *testing.T) {
	req := testBuilder().Tarot("我该跳槽吗", testSpread(), false, testProfile(), "")

	if !strings.Contains(req.Prompt, constraint) {
		t.Error("non-vip prompt missing the profile constraint")
	}
	for _, field := range []string{"双子", "INFJ", "上海"} {
		if strings.Contains(req.Prompt, field) {
			t.Errorf("non-vip prompt leaks profile field %q", field)
		}
	}
	if req.Model != "flash-model" {
		t.Errorf("expected flash model, got %s", req.Model)
	}
	if req.Schema == nil {
		t.Fatal("expected a response schema")
	}
	if _, ok := req.Schema.Properties["vipData"]; ok {
		t.Error("non-vip schema must not include vipData")
	}
}

func TestTarot_VIPEmbedsProfile(t *testing.T) {
	req := testBuilder().Tarot("我该跳槽吗", testSpread(), true, testProfile(), "")

	for _, field := range []string{"双子", "INFJ", "上海"} {
		if !strings.Contains(req.Prompt, field) {
			t.Errorf("vip prompt missing profile field %q", field)
		}
	}
	if strings.Contains(req.Prompt, constraint) {
		t.Error("vip prompt must not carry the non-vip constraint")
	}
	if req.Schema == nil {
		t.Fatal("expected a response schema")
	}
	vip, ok := req.Schema.Properties["vipData"]
	if !ok {
		t.Fatal("vip schema missing vipData")
	}
	for _, key := range []string{"crystal", "homeTreasure", "pitfallGuide"} {
		if _, ok := vip.Properties[key]; !ok {
			t.Errorf("vipData schema missing %q", key)
		}
	}
	found := false
	for _, r := range req.Schema.Required {
		if r == "vipData" {
			found = true
		}
	}
	if !found {
		t.Error("vipData not required in vip schema")
	}
}

func TestTarot_VIPEmptyProfileFallsBack(t *testing.T) {
	req := testBuilder().Tarot("我该跳槽吗", testSpread(), true, domain.UserProfile{}, "")

	if !strings.Contains(req.Prompt, "画像缺失") {
		t.Error("vip prompt without identity missing the generic fallback line")
	}
}

func TestTarot_VIPWeightsLastFollowup(t *testing.T) {
	req := testBuilder().Tarot("我该跳槽吗", testSpread(), true, testProfile(), "什么时候行动")

	if !strings.Contains(req.Prompt, "什么时候行动") {
		t.Error("vip prompt missing the last follow-up topic")
	}
}

func TestTarotFollowup_Format(t *testing.T) {
	aux := []domain.DrawnCard{{Card: domain.Card{Name: "月亮"}, Upright: false}}
	req := testBuilder().TarotFollowup("我该跳槽吗", testSpread(), "对方怎么想", aux, false, domain.UserProfile{})

	for _, want := range []string{"我该跳槽吗", "对方怎么想", "月亮 (逆位)", "### "} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("follow-up prompt missing %q", want)
		}
	}
	if req.Schema != nil {
		t.Error("follow-up must be free text")
	}
}

func TestTarotFollowup_NoAuxCards(t *testing.T) {
	req := testBuilder().TarotFollowup("问题", testSpread(), "追问", nil, false, domain.UserProfile{})

	if !strings.Contains(req.Prompt, "追加抽取的指示牌/辅助牌：无") {
		t.Error("expected the no-aux-cards marker")
	}
}

func TestDestiny_Models(t *testing.T) {
	user := domain.UserInfo{Name: "张三", BirthDate: "1990-01-01", BirthTime: "12:00", Gender: domain.Male}
	chart := domain.CalculateChart(user)

	req := testBuilder().Destiny(user, chart, false, domain.UserProfile{})
	if req.Model != "pro-model" {
		t.Errorf("expected pro model, got %s", req.Model)
	}
	if req.ThinkingBudget != 4000 {
		t.Errorf("expected thinking budget 4000, got %d", req.ThinkingBudget)
	}
	if !strings.Contains(req.Prompt, "张三") {
		t.Error("prompt missing the querent name")
	}
	if !strings.Contains(req.Prompt, constraint) {
		t.Error("non-vip prompt missing the profile constraint")
	}
}

func TestDestinyFollowup_FreeText(t *testing.T) {
	user := domain.UserInfo{BirthDate: "1990-01-01", BirthTime: "12:00"}
	chart := domain.CalculateChart(user)
	analysis := domain.DestinyAnalysis{Summary: "命局稳健"}

	req := testBuilder().DestinyFollowup(user, chart, analysis, "近期适合换工作吗", false, domain.UserProfile{})
	if req.Schema != nil {
		t.Error("follow-up must be free text")
	}
	for _, want := range []string{"命局稳健", "近期适合换工作吗"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestDream_StyleNames(t *testing.T) {
	req := testBuilder().Dream("梦见大海", domain.StyleJung, false, domain.UserProfile{})

	if !strings.Contains(req.Prompt, "荣格") {
		t.Error("prompt missing the school name")
	}
	if !strings.Contains(req.Prompt, "梦见大海") {
		t.Error("prompt missing the dream content")
	}
	if req.Schema == nil {
		t.Fatal("expected a response schema")
	}
	if _, ok := req.Schema.Properties["coreSymbols"]; !ok {
		t.Error("dream schema missing coreSymbols")
	}
}

func TestHuangli_VIPWeightsLastPlan(t *testing.T) {
	req := testBuilder().Huangli("2025-02-01", true, testProfile(), "搬家")

	if !strings.Contains(req.Prompt, "搬家") {
		t.Error("vip prompt missing the last plan topic")
	}
	if req.Schema == nil {
		t.Fatal("expected a response schema")
	}
}

func TestHuangliPlan_FixedFormat(t *testing.T) {
	data := domain.HuangliData{
		LunarDate: "正月初一",
		Ganzhi:    "乙巳年 戊寅月 壬申日",
		Yi:        []string{"祈福", "出行"},
		Ji:        []string{"动土"},
		Wuxing:    "剑锋金",
		Chong:     "冲虎",
	}
	req := testBuilder().HuangliPlan("2025-02-01", "签合同", data)

	for _, want := range []string{"【判断】", "【理由】", "【趋利】", "【避害】", "签合同", "祈福、出行"} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("plan prompt missing %q", want)
		}
	}
	if req.Schema != nil {
		t.Error("plan verdict must be free text")
	}
}
