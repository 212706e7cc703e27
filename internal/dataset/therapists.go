package dataset

import (
	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/pkg/locale"

	"github.com/google/uuid"
)

// DefaultTherapists returns the seed therapist directory. Ids are fixed so
// reseeding an existing database stays idempotent.
func DefaultTherapists() []*entity.Therapist {
	return []*entity.Therapist{
		{
			Id:          uuid.MustParse("5f1c1de2-0a57-4a6f-9a3c-1b2f6d1c0a01"),
			Name:        "林婉清",
			Title:       "注册心理咨询师",
			Specialties: []string{"焦虑管理", "压力调节"},
			Languages:   []string{locale.ZhCN, locale.ZhTW},
			Biography:   "十年焦虑与压力相关议题咨询经验，擅长认知行为取向的短程干预。",
		},
		{
			Id:          uuid.MustParse("5f1c1de2-0a57-4a6f-9a3c-1b2f6d1c0a02"),
			Name:        "陈思远",
			Title:       "临床心理师",
			Specialties: []string{"睡眠障碍", "失眠认知行为治疗"},
			Languages:   []string{locale.ZhCN, locale.EnUS},
			Biography:   "专注于失眠的认知行为治疗，协助来访者重建稳定的睡眠节律。",
		},
		{
			Id:          uuid.MustParse("5f1c1de2-0a57-4a6f-9a3c-1b2f6d1c0a03"),
			Name:        "Sarah Whitfield",
			Title:       "Licensed Clinical Psychologist",
			Specialties: []string{"anxiety", "panic disorder"},
			Languages:   []string{locale.EnUS, locale.EnGB},
			Biography:   "Works with adults experiencing anxiety and panic, using evidence-based cognitive approaches.",
		},
		{
			Id:          uuid.MustParse("5f1c1de2-0a57-4a6f-9a3c-1b2f6d1c0a04"),
			Name:        "David Okafor",
			Title:       "Counselling Psychologist",
			Specialties: []string{"workplace stress", "burnout"},
			Languages:   []string{locale.EnUS},
			Biography:   "Supports professionals navigating workload pressure, burnout and career transitions.",
		},
		{
			Id:          uuid.MustParse("5f1c1de2-0a57-4a6f-9a3c-1b2f6d1c0a05"),
			Name:        "佐藤美咲",
			Title:       "公認心理師",
			Specialties: []string{"気分の落ち込み", "対人関係"},
			Languages:   []string{locale.JaJP, locale.EnUS},
			Biography:   "気分の落ち込みや対人関係の悩みを中心に、丁寧な対話を大切にしています。",
		},
		{
			Id:          uuid.MustParse("5f1c1de2-0a57-4a6f-9a3c-1b2f6d1c0a06"),
			Name:        "周雨桐",
			Title:       "注册心理咨询师",
			Specialties: []string{"情绪调节", "低落情绪"},
			Languages:   []string{locale.ZhCN},
			Biography:   "擅长情绪议题的陪伴式咨询，帮助来访者理解并照顾自己的情绪。",
		},
	}
}
