package classify

// Keyword tables used when the configuration leaves them unset.
const (
	DefaultSmartKeywords = `{"cy": ["餐", "吃", "饭", "早餐", "午餐", "晚餐", "宵夜", "食", "菜市场", "菜"], ` +
		`"gw": ["购", "买", "购物", "商场", "超市"], ` +
		`"jf": ["房租", "水电", "停车费", "物业", "燃气", "网费", "话费", "缴费"]}`

	DefaultHabitKeywords = `{"sp": ["运动", "深蹲", "哑铃", "散步", "跑步", "健身"], ` +
		`"reading": ["阅读", "读了", "看书", "读书"], ` +
		`"en": ["学习", "英语", "学了"]}`
)
