package prompt

import "github.com/randomtoy/faas-go/internal/ports"

func str() *ports.Schema { return &ports.Schema{Type: ports.TypeString} }

func strDesc(desc string) *ports.Schema {
	return &ports.Schema{Type: ports.TypeString, Description: desc}
}

func strArray() *ports.Schema {
	return &ports.Schema{Type: ports.TypeArray, Items: str()}
}

// vipDataSchema is the paid sub-shape required of every VIP result: crystal
// recommendation, home item and a pitfall guide.
func vipDataSchema() *ports.Schema {
	return &ports.Schema{
		Type: ports.TypeObject,
		Properties: map[string]*ports.Schema{
			"crystal": {
				Type: ports.TypeObject,
				Properties: map[string]*ports.Schema{
					"variety":    strDesc("推荐的水晶品种"),
					"outfitTips": strDesc("结合当地天气（如有）或季节给出的今日穿搭建议"),
				},
				Required: []string{"variety", "outfitTips"},
			},
			"homeTreasure": {
				Type: ports.TypeObject,
				Properties: map[string]*ports.Schema{
					"item":      strDesc("推荐的镇宅之宝"),
					"benefit":   strDesc("对运势的提升作用"),
					"placement": strDesc("建议摆放位置"),
				},
				Required: []string{"item", "benefit", "placement"},
			},
			"pitfallGuide": strDesc("当日避坑指南。"),
		},
		Required: []string{"crystal", "homeTreasure", "pitfallGuide"},
	}
}

// withVIP extends a base object schema with the required vipData sub-shape.
func withVIP(base *ports.Schema, vip bool) *ports.Schema {
	if !vip {
		return base
	}
	base.Properties["vipData"] = vipDataSchema()
	base.Required = append(base.Required, "vipData")
	return base
}

func destinySchema(vip bool) *ports.Schema {
	return withVIP(&ports.Schema{
		Type: ports.TypeObject,
		Properties: map[string]*ports.Schema{
			"summary":      str(),
			"personality":  str(),
			"career":       str(),
			"wealth":       str(),
			"relationship": str(),
			"health":       str(),
			"suggestions":  strArray(),
		},
		Required: []string{"summary", "personality", "career", "wealth", "relationship", "health", "suggestions"},
	}, vip)
}

func tarotSchema(vip bool) *ports.Schema {
	return withVIP(&ports.Schema{
		Type: ports.TypeObject,
		Properties: map[string]*ports.Schema{
			"interpretation": str(),
			"advice":         str(),
			"pastPresentFuture": {
				Type: ports.TypeObject,
				Properties: map[string]*ports.Schema{
					"past":    str(),
					"present": str(),
					"future":  str(),
				},
				Required: []string{"past", "present", "future"},
			},
		},
		Required: []string{"interpretation", "advice", "pastPresentFuture"},
	}, vip)
}

func dreamSchema(vip bool) *ports.Schema {
	return withVIP(&ports.Schema{
		Type: ports.TypeObject,
		Properties: map[string]*ports.Schema{
			"coreSymbols": {
				Type: ports.TypeArray,
				Items: &ports.Schema{
					Type: ports.TypeObject,
					Properties: map[string]*ports.Schema{
						"symbol":  str(),
						"meaning": str(),
					},
					Required: []string{"symbol", "meaning"},
				},
			},
			"mainAnalysis":  str(),
			"hiddenMeaning": str(),
			"lifeAdvice":    str(),
		},
		Required: []string{"coreSymbols", "mainAnalysis", "hiddenMeaning", "lifeAdvice"},
	}, vip)
}

func huangliSchema(vip bool) *ports.Schema {
	return withVIP(&ports.Schema{
		Type: ports.TypeObject,
		Properties: map[string]*ports.Schema{
			"lunarDate":      str(),
			"ganzhi":         str(),
			"yi":             strArray(),
			"ji":             strArray(),
			"wuxing":         str(),
			"chong":          str(),
			"luckyDirection": str(),
			"summary":        str(),
		},
		Required: []string{"lunarDate", "ganzhi", "yi", "ji", "wuxing", "chong", "luckyDirection", "summary"},
	}, vip)
}
