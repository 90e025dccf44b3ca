// Package prompt turns domain inputs into generation requests: a natural
// language prompt plus the mode's fixed output-shape contract.
//
// Personalization rules: profile context is embedded only when the vip flag
// is set and the profile carries an identity field. Non-vip prompts instead
// carry an explicit content constraint forbidding any reference to profile
// attributes. An absent or empty profile yields a generic no-profile
// instruction rather than an error.
package prompt

import (
	"fmt"
	"strings"

	"github.com/randomtoy/faas-go/internal/domain"
	"github.com/randomtoy/faas-go/internal/ports"
)

// Builder constructs generation requests for every divination mode.
type Builder struct {
	proModel   string
	flashModel string
}

func NewBuilder(proModel, flashModel string) *Builder {
	return &Builder{proModel: proModel, flashModel: flashModel}
}

const nonVIPConstraint = "限制：正文不要提及星座、MBTI或常驻城市等个人画像信息。"

func orUnknown(s string) string {
	if s == "" {
		return "未知"
	}
	return s
}

// profileContext renders the VIP profile calibration line, or the generic
// no-profile instruction when the profile carries no identity.
func profileContext(vip bool, profile domain.UserProfile, missing string) string {
	if vip && profile.HasIdentity() {
		return fmt.Sprintf("问卜者背景：%s座，MBTI %s，常驻城市 %s。",
			profile.Constellation, orUnknown(profile.MBTI), orUnknown(profile.City))
	}
	return missing
}

func genderLabel(g domain.Gender) string {
	if g == domain.Male {
		return "男"
	}
	return "女"
}

func chartDescription(chart []domain.Palace) string {
	parts := make([]string, len(chart))
	for i, p := range chart {
		names := make([]string, len(p.Stars))
		for j, s := range p.Stars {
			names[j] = s.Name
		}
		parts[i] = fmt.Sprintf("%s(%s): %s", p.Name, p.Zodiac, strings.Join(names, ","))
	}
	return strings.Join(parts, "; ")
}

// CardsInfo renders a drawn spread for embedding in a prompt.
func CardsInfo(cards []domain.DrawnCard) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		orientation := "正位"
		if !c.Upright {
			orientation = "逆位"
		}
		parts[i] = fmt.Sprintf("位置 %d：%s (%s)", i+1, c.Name, orientation)
	}
	return strings.Join(parts, "；")
}

// Destiny builds the ziwei chart reading request.
func (b *Builder) Destiny(user domain.UserInfo, chart []domain.Palace, vip bool, profile domain.UserProfile) ports.GenerateRequest {
	name := user.Name
	if name == "" {
		name = "匿名"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "作为命理大宗师，解析以下紫微命盘：\n")
	fmt.Fprintf(&sb, "命主：%s，性别：%s，出生：%s %s\n", name, genderLabel(user.Gender), user.BirthDate, user.BirthTime)
	fmt.Fprintf(&sb, "命盘：%s\n", chartDescription(chart))
	if vip && profile.HasIdentity() {
		fmt.Fprintf(&sb, "【画像校准】星座：%s，性格：%s。\n", profile.Constellation, orUnknown(profile.MBTI))
	} else {
		sb.WriteString("【画像缺失】请基于天时共性进行高频能量引导。\n")
	}
	sb.WriteString("\n要求：无论画像是否完整，解析必须专业且具有极高情绪价值。若画像缺失，请侧重于宇宙星辰对该命局的共性指引。\n")
	if !vip {
		sb.WriteString(nonVIPConstraint + "\n")
	}

	return ports.GenerateRequest{
		Model:          b.proModel,
		Prompt:         sb.String(),
		Schema:         destinySchema(vip),
		ThinkingBudget: 4000,
	}
}

// DestinyFollowup builds a free-text follow-up for an existing chart reading.
func (b *Builder) DestinyFollowup(user domain.UserInfo, chart []domain.Palace, analysis domain.DestinyAnalysis, question string, vip bool, profile domain.UserProfile) ports.GenerateRequest {
	name := user.Name
	if name == "" {
		name = "匿名"
	}

	var sb strings.Builder
	sb.WriteString("你是紫微斗数大师。结合命盘与既有解析，为用户的近期困惑提供具体指引。\n")
	fmt.Fprintf(&sb, "命主：%s，性别：%s，出生：%s %s\n", name, genderLabel(user.Gender), user.BirthDate, user.BirthTime)
	fmt.Fprintf(&sb, "命盘：%s\n", chartDescription(chart))
	fmt.Fprintf(&sb, "既有解析摘要：%s\n", analysis.Summary)
	fmt.Fprintf(&sb, "追加问题：%s\n", question)
	sb.WriteString("重点：请围绕最近一次追问给出更具体、可执行的指引与建议。\n")
	if vip && profile.HasIdentity() {
		fmt.Fprintf(&sb, "【画像校准】星座：%s，性格：%s。\n", profile.Constellation, orUnknown(profile.MBTI))
	} else {
		sb.WriteString("【画像缺失】请以命盘为主给出共性指引。\n")
	}
	sb.WriteString("\n要求：语气笃定但温和，条理清晰，避免泛泛而谈；建议不少于 300 字。\n")
	if !vip {
		sb.WriteString(nonVIPConstraint + "\n")
	}

	return ports.GenerateRequest{Model: b.flashModel, Prompt: sb.String()}
}

// Tarot builds the three-card reading request. When vip is set and a prior
// follow-up topic exists, the VIP guidance is weighted toward that topic.
func (b *Builder) Tarot(question string, cards []domain.DrawnCard, vip bool, profile domain.UserProfile, lastFollowup string) ports.GenerateRequest {
	var sb strings.Builder
	sb.WriteString("作为塔罗大宗师，请对以下三牌阵进行深度解读：\n")
	fmt.Fprintf(&sb, "问题：%s，牌阵：%s\n", question, CardsInfo(cards))
	if vip {
		sb.WriteString(profileContext(vip, profile, "【画像缺失】问卜者保持神秘，请基于牌阵本身产出高度灵性的通感解读，提供深度心理疗愈。") + "\n")
		if lastFollowup != "" {
			fmt.Fprintf(&sb, "最近一次追问聚焦：%s。VIP建议请优先围绕该问题给出更具体、更可执行的指引。\n", lastFollowup)
		}
	} else {
		sb.WriteString(nonVIPConstraint + "\n")
	}
	sb.WriteString("\n要求：若画像不完整，请提供“跨越时空的灵魂共振”解读，字数不少于 600 字。确保即使没有具体背景，读者也能感到被精准洞察和深深抚慰。\n")

	return ports.GenerateRequest{
		Model:          b.flashModel,
		Prompt:         sb.String(),
		Schema:         tarotSchema(vip),
		ThinkingBudget: 2000,
	}
}

// TarotFollowup builds a free-text deep-dive on the same spread: the original
// context, the new question and any freshly drawn auxiliary cards. The
// response is required to be organized as 2-4 short titled sections.
func (b *Builder) TarotFollowup(originalQuestion string, originalCards []domain.DrawnCard, followupQuestion string, extraCards []domain.DrawnCard, vip bool, profile domain.UserProfile) ports.GenerateRequest {
	extraInfo := CardsInfo(extraCards)
	if extraInfo == "" {
		extraInfo = "无"
	}

	var sb strings.Builder
	sb.WriteString("你是资深塔罗师。现在对同一牌阵进行“追加提问”的深挖解读。\n")
	fmt.Fprintf(&sb, "初始问题：%s\n", originalQuestion)
	fmt.Fprintf(&sb, "初始牌阵：%s\n", CardsInfo(originalCards))
	fmt.Fprintf(&sb, "追加提问：%s\n", followupQuestion)
	fmt.Fprintf(&sb, "追加抽取的指示牌/辅助牌：%s\n", extraInfo)
	if vip && profile.HasIdentity() {
		sb.WriteString(profileContext(vip, profile, "") + "\n")
	}
	if !vip {
		sb.WriteString(nonVIPConstraint + "\n")
	}
	sb.WriteString("\n输出要求：\n- 以 2-4 段短小、有条理的答复回应追加提问。\n- 每段以“### 标题”开头，标题简洁。\n- 语气清晰、具象、可执行，避免泛泛而谈。\n")

	return ports.GenerateRequest{Model: b.flashModel, Prompt: sb.String()}
}

var dreamStyleNames = map[domain.DreamStyle]string{
	domain.StyleZhougong:     "传统民俗专家（周公解梦）",
	domain.StyleFreud:        "弗洛伊德精神分析学派",
	domain.StyleJung:         "荣格分析心理学派（原型与集体无意识）",
	domain.StyleCognitive:    "认知心理学派（记忆与情绪加工）",
	domain.StyleAnthropology: "文化人类学视角（象征与仪式）",
}

// Dream builds the dream interpretation request for the selected school.
func (b *Builder) Dream(content string, style domain.DreamStyle, vip bool, profile domain.UserProfile) ports.GenerateRequest {
	var sb strings.Builder
	fmt.Fprintf(&sb, "解析梦境：%s\n", content)
	fmt.Fprintf(&sb, "视角：%s\n", dreamStyleNames[style])
	if vip {
		sb.WriteString(profileContext(vip, profile, "【画像缺失】请提供通用的集体无意识深度剖析。") + "\n")
	} else {
		sb.WriteString(nonVIPConstraint + "\n")
	}
	sb.WriteString("\n要求：若缺乏画像，请从梦境意象的原始力量入手。产出不少于 500 字，提供极高的心理支持。\n")

	return ports.GenerateRequest{
		Model:          b.flashModel,
		Prompt:         sb.String(),
		Schema:         dreamSchema(vip),
		ThinkingBudget: 2500,
	}
}

// Huangli builds the almanac lookup request for one date. With vip set and a
// prior plan topic, the VIP guidance is weighted toward that topic.
func (b *Builder) Huangli(date string, vip bool, profile domain.UserProfile, lastPlanTopic string) ports.GenerateRequest {
	var sb strings.Builder
	fmt.Fprintf(&sb, "推演日期 %s 的老黄历。", date)
	if vip {
		sb.WriteString(profileContext(vip, profile, "【画像缺失】提供通用开运指引。"))
		if lastPlanTopic != "" {
			fmt.Fprintf(&sb, "最近一次事项追问：%s。VIP建议请围绕该事项给出更贴合的趋利避害建议。", lastPlanTopic)
		}
	} else {
		sb.WriteString(nonVIPConstraint)
	}

	return ports.GenerateRequest{
		Model:  b.flashModel,
		Prompt: sb.String(),
		Schema: huangliSchema(vip),
	}
}

// HuangliPlan builds the plan-suitability check: a fixed 4-line free-text
// verdict based on the already-fetched almanac data.
func (b *Builder) HuangliPlan(date, plan string, data domain.HuangliData) ports.GenerateRequest {
	var sb strings.Builder
	sb.WriteString("你是老黄历推演师。基于当天黄历信息，判断“计划事项”是否适合进行，并给出趋利避害的具体建议。\n")
	fmt.Fprintf(&sb, "日期：%s\n", date)
	fmt.Fprintf(&sb, "黄历：%s（%s），五行 %s，冲 %s\n", data.LunarDate, data.Ganzhi, data.Wuxing, data.Chong)
	fmt.Fprintf(&sb, "宜：%s\n", strings.Join(data.Yi, "、"))
	fmt.Fprintf(&sb, "忌：%s\n", strings.Join(data.Ji, "、"))
	fmt.Fprintf(&sb, "计划事项：%s\n", plan)
	sb.WriteString("\n要求：\n1) 不要寒暄或自我介绍，语气自然不机械；\n2) 输出格式固定为 4 行，分别以【判断】【理由】【趋利】【避害】开头；\n3) 判断只能是“适合/不适合/谨慎可行”之一；\n4) 每行 1-2 句，具体、好执行；\n5) 正文不要提及星座、MBTI或常驻城市等个人画像信息。\n")

	return ports.GenerateRequest{Model: b.flashModel, Prompt: sb.String()}
}
