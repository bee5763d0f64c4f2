package domain

const MailTypeDailyReport = "daily_report"

type MailMessage struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type DailyReportMailData struct {
	Date        string `json:"date"`
	RequestedBy string `json:"requestedBy"`
}

// DailyReportMailView 邮件模板渲染所用的数据
type DailyReportMailView struct {
	Date        string
	RequestedBy string
	Metrics     DayMetrics
}
