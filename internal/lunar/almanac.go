package lunar

import (
	"slices"

	"github.com/tartampluch/go-lunar-birthday/internal/config"
)

// The almanac is a fixed rule over the lunar month/day, independent of the year.
// Leap months are passed as a negative month so the month-specific rows never fire.

var (
	baseSuitable   = []string{"祭祀", "祈福", "求嗣"}
	baseUnsuitable = []string{"动土", "破土"}

	descriptions = [...]string{
		"今日宜静不宜动，适合修身养性",
		"今日运势不错，适合开展新项目",
		"今日适合与人交往，增进感情",
		"今日财运亨通，适合投资理财",
		"今日适合学习进修，提升自我",
		"今日适合运动健身，保持健康",
		"今日适合整理家务，清洁环境",
		"今日适合与家人团聚，享受天伦",
		"今日适合户外活动，亲近自然",
		"今日适合冥想打坐，净化心灵",
	}

	fallbackSuitable = []string{"祭祀", "祈福"}
)

type monthDay struct{ month, day int }

var festivals = map[monthDay]string{
	{1, 1}:   "春节",
	{1, 15}:  "元宵节",
	{2, 2}:   "龙抬头",
	{5, 5}:   "端午节",
	{7, 7}:   "七夕节",
	{8, 15}:  "中秋节",
	{9, 9}:   "重阳节",
	{12, 8}:  "腊八节",
	{12, 23}: "小年",
}

// Suitable lists the recommended activities, at most config.MaxSuitable.
func Suitable(month, day int) []string {
	out := slices.Clone(baseSuitable)

	if day == 1 || day == 15 {
		out = append(out, "斋醮", "开光")
	}
	if day%2 == 0 {
		out = append(out, "出行", "移徙")
	}
	if day%3 == 0 {
		out = append(out, "开市", "交易")
	}
	if day%5 == 0 {
		out = append(out, "纳财", "栽种")
	}

	switch (monthDay{month, day}) {
	case monthDay{1, 1}:
		out = append(out, "拜年", "团圆")
	case monthDay{5, 5}:
		out = append(out, "赛龙舟", "吃粽子")
	case monthDay{8, 15}:
		out = append(out, "赏月", "团圆")
	}

	return capped(out, config.MaxSuitable)
}

// Unsuitable lists the activities to avoid, at most config.MaxUnsuitable.
func Unsuitable(month, day int) []string {
	out := slices.Clone(baseUnsuitable)

	switch day {
	case 7, 14, 21, 28:
		out = append(out, "安葬", "入殓")
	}
	if day%4 == 0 {
		out = append(out, "嫁娶", "开市")
	}
	if day%6 == 0 {
		out = append(out, "出行", "移徙")
	}
	if month == 7 && day == 15 {
		out = append(out, "嫁娶", "开市")
	}

	return capped(out, config.MaxUnsuitable)
}

// Description returns the one-line daily summary.
func Description(day int) string {
	i := day % len(descriptions)
	if i < 0 {
		i += len(descriptions)
	}
	return descriptions[i]
}

// Festivals returns the traditional festivals on the lunar month/day, or nil.
func Festivals(month, day int) []string {
	if name, ok := festivals[monthDay{month, day}]; ok {
		return []string{name}
	}
	return nil
}

// FestivalDate is a festival resolved to its solar date in a given lunar year.
type FestivalDate struct {
	Name       string `json:"name"`
	LunarMonth int    `json:"lunarMonth"`
	LunarDay   int    `json:"lunarDay"`
	Date       string `json:"date"`
}

func capped(list []string, limit int) []string {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
