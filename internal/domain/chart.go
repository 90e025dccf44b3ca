package domain

import (
	"fmt"
	"time"
)

var (
	zodiacBranches = []string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
	palaceNames    = []string{"命宫", "兄弟", "夫妻", "子女", "财帛", "疾厄", "迁移", "交友", "官禄", "田宅", "福德", "父母"}
	majorStars     = []string{"紫微", "天机", "太阳", "武曲", "天同", "廉贞", "天府", "太阴", "贪狼", "巨门", "天相", "天梁", "七杀", "破军"}
)

// CalculateChart maps birth inputs to a fixed 12-palace layout. The function
// is pure and deterministic for given inputs; it carries no astrological
// guarantee beyond that determinism.
func CalculateChart(user UserInfo) []Palace {
	seed := chartSeed(user)
	mix := func(max, offset int64) int64 {
		v := ((seed+offset)*9301 + 49297) % 233280 % max
		if v < 0 {
			v += max
		}
		return v
	}

	// Palace ring rotates with the birth hour.
	var hour int
	fmt.Sscanf(user.BirthTime, "%d:", &hour)
	startOffset := (hour + 2) % 12

	chart := make([]Palace, 0, 12)
	for index, branch := range zodiacBranches {
		i := int64(index)
		palaceIdx := (index - startOffset + 12) % 12
		name := palaceNames[palaceIdx]

		var stars []Star
		if mix(3, i) > 0 {
			stars = append(stars, Star{
				Name:  majorStars[mix(int64(len(majorStars)), i*10)],
				Type:  StarMajor,
				Level: 5,
			})
		}
		if mix(10, i*2) > 7 {
			stars = append(stars, Star{Name: "文昌", Type: StarLucky, Level: 4})
		}
		if mix(10, i*3) > 8 {
			stars = append(stars, Star{Name: "擎羊", Type: StarUnlucky, Level: 3})
		}

		chart = append(chart, Palace{
			ID:           index,
			Zodiac:       branch,
			Name:         name,
			Stars:        stars,
			IsMainPalace: name == "命宫",
		})
	}
	return chart
}

func chartSeed(user UserInfo) int64 {
	t, err := time.Parse("2006-01-02 15:04", user.BirthDate+" "+user.BirthTime)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
