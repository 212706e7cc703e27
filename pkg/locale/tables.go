package locale

// ReplyCategory is one branch of the deterministic heuristic reply: a set of
// trigger keywords and the canned supportive reply for that concern. Branches
// are evaluated in order; the first keyword hit wins, so more specific
// concerns (sleep) sit above broader ones (anxiety).
type ReplyCategory struct {
	Name     string
	Keywords []string
	Reply    string
}

var replyCategories = map[string][]ReplyCategory{
	ZhCN: {
		{
			Name:     "sleep",
			Keywords: []string{"睡不着", "失眠", "睡眠", "熬夜", "睡不好", "早醒"},
			Reply:    "听起来你的睡眠最近受到了影响，这确实很消耗人。可以试着在睡前一小时放下手机，用温水泡脚或做几组缓慢的深呼吸，让身体先安静下来。如果失眠持续超过两周，建议和专业人士聊一聊。",
		},
		{
			Name:     "anxiety",
			Keywords: []string{"焦虑", "紧张", "担心", "不安", "心慌", "恐慌"},
			Reply:    "感到焦虑的时候，身体往往比想法先紧绷起来。试试“4-7-8”呼吸：吸气4秒、屏住7秒、呼气8秒，重复几轮。把让你担心的事写下来，也能帮大脑把模糊的不安变成具体的问题。你愿意说说最让你放不下的是什么吗？",
		},
		{
			Name:     "workload",
			Keywords: []string{"加班", "工作压力", "太累", "忙不过来", "内卷", "考试", "学业"},
			Reply:    "压力大的时候，人很容易觉得所有事情都必须马上做完。可以先把任务按“今天必须”“可以推迟”分两栏，每完成一件就划掉一件。记得给自己留出哪怕十分钟的真正休息。你最近有好好吃饭和休息吗？",
		},
		{
			Name:     "mood",
			Keywords: []string{"难过", "伤心", "低落", "抑郁", "想哭", "孤独", "没意思"},
			Reply:    "谢谢你愿意把这份心情说出来，难过本身不是软弱。情绪像天气，会来也会走，但你不需要一个人扛着。如果这种低落已经持续了一段时间，或者影响到吃饭睡觉，请考虑寻求专业帮助，你值得被认真对待。",
		},
	},
	EnUS: {
		{
			Name:     "sleep",
			Keywords: []string{"insomnia", "can't sleep", "cannot sleep", "sleepless", "sleep", "awake at night"},
			Reply:    "It sounds like your sleep has been suffering lately, and that wears anyone down. Try putting screens away an hour before bed and slowing your breathing with long, quiet exhales. If the sleeplessness lasts more than a couple of weeks, it is worth talking to a professional.",
		},
		{
			Name:     "anxiety",
			Keywords: []string{"anxious", "anxiety", "nervous", "worried", "panic", "on edge"},
			Reply:    "When anxiety shows up, the body often tightens before the mind catches up. A 4-7-8 breath can help: inhale for 4, hold for 7, exhale for 8. Writing down the exact worry also turns vague dread into a solvable problem. What is weighing on you most right now?",
		},
		{
			Name:     "workload",
			Keywords: []string{"overtime", "workload", "deadline", "burnout", "exhausted", "overwhelmed", "exam"},
			Reply:    "Under heavy pressure everything starts to feel equally urgent. Try splitting tasks into \"must happen today\" and \"can wait\", and cross each one off as you go. Protect at least ten real minutes of rest for yourself. Have you been eating and sleeping properly lately?",
		},
		{
			Name:     "mood",
			Keywords: []string{"sad", "down", "depressed", "lonely", "hopeless", "cry", "empty"},
			Reply:    "Thank you for putting that feeling into words; sadness is not weakness. Moods move like weather, they arrive and they pass, and you do not have to carry this alone. If the low mood has lasted a while or is affecting eating and sleep, please consider reaching out for professional support.",
		},
	},
}

var genericReplies = map[string]string{
	ZhCN: "我在认真听。无论你现在经历着什么，愿意说出来就已经是照顾自己的一步。可以多和我说说发生了什么吗？我会陪着你一起梳理。",
	EnUS: "I'm listening. Whatever you are going through right now, putting it into words is already a way of taking care of yourself. Tell me a little more about what happened, and we can sort through it together.",
}

// HeuristicReply picks the canned supportive reply for the first keyword
// category matching the utterance, with a generic default when nothing
// matches. Locale resolution walks the fallback chain, so zh-TW gets the
// zh-CN tables and unknown locales end at English.
func HeuristicReply(loc, utterance string) string {
	for _, tier := range FallbackChain(loc) {
		categories, ok := replyCategories[tier]
		if !ok {
			continue
		}
		if cat := matchCategory(categories, utterance); cat != nil {
			return cat.Reply
		}
	}
	return GenericReply(loc)
}

// HeuristicCategory returns the name of the branch HeuristicReply would take,
// or "" when only the generic default applies.
func HeuristicCategory(loc, utterance string) string {
	for _, tier := range FallbackChain(loc) {
		categories, ok := replyCategories[tier]
		if !ok {
			continue
		}
		if cat := matchCategory(categories, utterance); cat != nil {
			return cat.Name
		}
	}
	return ""
}

// CategoryReply returns the canned reply for a named branch in the closest
// locale tier that defines it.
func CategoryReply(loc, name string) string {
	for _, tier := range FallbackChain(loc) {
		for _, cat := range replyCategories[tier] {
			if cat.Name == name {
				return cat.Reply
			}
		}
	}
	return GenericReply(loc)
}

// GenericReply is the supportive default used when no category matches.
func GenericReply(loc string) string {
	for _, tier := range FallbackChain(loc) {
		if reply, ok := genericReplies[tier]; ok {
			return reply
		}
	}
	return genericReplies[EnUS]
}

func matchCategory(categories []ReplyCategory, utterance string) *ReplyCategory {
	for i, cat := range categories {
		for _, kw := range cat.Keywords {
			if kw != "" && containsFold(utterance, kw) {
				return &categories[i]
			}
		}
	}
	return nil
}
