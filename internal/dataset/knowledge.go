package dataset

import (
	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/pkg/locale"
)

// KnowledgeEntries returns the curated guidance dataset. Entries are keyed
// by a stable id so warm-cache embeddings survive restarts.
func KnowledgeEntries() []entity.KnowledgeEntry {
	return []entity.KnowledgeEntry{
		{
			Id:      "kb-zh-sleep-hygiene",
			Locale:  locale.ZhCN,
			Title:   "改善睡眠的基础方法",
			Summary: "长期失眠通常和作息不规律、睡前过度刺激有关，建立固定的睡眠节律是第一步。",
			Guidance: []string{
				"每天固定时间上床和起床，周末也尽量保持一致。",
				"睡前一小时远离手机和电脑屏幕。",
				"躺下二十分钟仍睡不着时，起床做一些安静的事，有困意再回到床上。",
			},
			Keywords: []string{"失眠", "睡不着", "睡眠", "作息"},
			Tags:     []string{"睡眠", "自助"},
			Source:   "curated",
		},
		{
			Id:      "kb-zh-sleep-racing-mind",
			Locale:  locale.ZhCN,
			Title:   "夜里思绪停不下来怎么办",
			Summary: "很多失眠的人不是不困，而是脑子里的担忧在深夜被放大，可以通过写下来的方式把担忧从脑中移出去。",
			Guidance: []string{
				"睡前花十分钟把担心的事写在纸上，并写下明天能做的一小步。",
				"用缓慢的腹式呼吸帮助身体进入放松状态。",
			},
			Keywords: []string{"失眠", "担忧", "想太多", "睡眠"},
			Tags:     []string{"睡眠", "情绪"},
			Source:   "curated",
		},
		{
			Id:      "kb-zh-anxiety-grounding",
			Locale:  locale.ZhCN,
			Title:   "焦虑发作时的着陆练习",
			Summary: "焦虑升高时，注意力会被拉进对未来的担忧里，着陆练习把注意力带回当下的感官体验。",
			Guidance: []string{
				"说出你此刻看到的五样东西、听到的四种声音、摸到的三种质感。",
				"把呼气的时间拉长到吸气的两倍。",
			},
			Keywords: []string{"焦虑", "紧张", "心慌"},
			Tags:     []string{"焦虑", "练习"},
			Source:   "curated",
		},
		{
			Id:      "kb-zh-workload-boundaries",
			Locale:  locale.ZhCN,
			Title:   "工作压力过载时的边界设定",
			Summary: "长期加班和随时在线会让压力系统无法关闭，需要主动给工作设定明确的边界。",
			Guidance: []string{
				"下班后设定一个固定的时间点，之后不再查看工作消息。",
				"把任务按紧急和重要分层，允许一部分任务明天再做。",
			},
			Keywords: []string{"压力", "加班", "工作"},
			Tags:     []string{"压力", "工作"},
			Source:   "curated",
		},
		{
			Id:      "kb-zh-low-mood-activation",
			Locale:  locale.ZhCN,
			Title:   "情绪低落时的行为激活",
			Summary: "情绪低的时候人会回避活动，而回避又会让情绪更低，行为激活从很小的行动开始打破这个循环。",
			Guidance: []string{
				"每天安排一件十分钟内能完成的小事，完成后记录下来。",
				"优先选择曾经让你有愉悦感或成就感的活动。",
			},
			Keywords: []string{"难过", "情绪低落", "提不起劲"},
			Tags:     []string{"情绪", "自助"},
			Source:   "curated",
		},
		{
			Id:      "kb-tw-sleep-routine",
			Locale:  locale.ZhTW,
			Title:   "建立穩定的睡眠節律",
			Summary: "長期失眠往往與作息混亂有關，固定的就寢與起床時間能重建身體的睡眠訊號。",
			Guidance: []string{
				"每天同一時間上床與起床，假日也盡量維持。",
				"睡前避免咖啡因與劇烈運動。",
			},
			Keywords: []string{"失眠", "睡不著", "睡眠"},
			Tags:     []string{"睡眠"},
			Source:   "curated",
		},
		{
			Id:      "kb-en-sleep-hygiene",
			Locale:  locale.EnUS,
			Title:   "Sleep hygiene basics",
			Summary: "Persistent insomnia usually improves once the sleep schedule is regular and the bed is reserved for sleep.",
			Guidance: []string{
				"Keep the same bedtime and wake time every day, including weekends.",
				"If you cannot sleep after twenty minutes, get up and do something quiet until drowsy.",
				"Avoid screens for an hour before bed.",
			},
			Keywords: []string{"insomnia", "sleep", "can't sleep"},
			Tags:     []string{"sleep", "self-help"},
			Source:   "curated",
		},
		{
			Id:      "kb-en-anxiety-breathing",
			Locale:  locale.EnUS,
			Title:   "Slow breathing for acute anxiety",
			Summary: "Extending the exhale activates the body's calming response and reduces the physical symptoms of anxiety.",
			Guidance: []string{
				"Breathe in for four counts and out for eight.",
				"Repeat for two to three minutes, keeping shoulders loose.",
			},
			Keywords: []string{"anxiety", "anxious", "panic"},
			Tags:     []string{"anxiety", "exercise"},
			Source:   "curated",
		},
		{
			Id:      "kb-en-workload-recovery",
			Locale:  locale.EnUS,
			Title:   "Recovering from work overload",
			Summary: "Chronic overtime keeps the stress system switched on; deliberate recovery time is what switches it off.",
			Guidance: []string{
				"Block a hard stop time after which work messages stay unread.",
				"Schedule at least one restorative activity per day, however small.",
			},
			Keywords: []string{"stress", "overtime", "burnout", "workload"},
			Tags:     []string{"stress", "work"},
			Source:   "curated",
		},
	}
}
