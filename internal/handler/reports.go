package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"github.com/wedabay-ops/duty-attendance/backend/internal/export"
	"github.com/wedabay-ops/duty-attendance/backend/internal/source"
	"github.com/wedabay-ops/duty-attendance/backend/internal/utils"
)

const defaultTrendWeeks = 4

// reportError 数据源不可用时返回统一的提示，其余情况视为服务器错误
func (h *Handler) reportError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, source.ErrNoData) {
		h.errorResponse(w, r, source.ErrNoData.Error())
		return
	}
	h.internalServerError(w, r, err)
}

// dateParam 读取日期参数，缺省为考勤时区的今天
func (h *Handler) dateParam(r *http.Request, key string) (time.Time, error) {
	return utils.ParseDateOr(r.URL.Query().Get(key), h.loc, time.Now())
}

func (h *Handler) rangeParams(r *http.Request) (time.Time, time.Time, error) {
	from, err := utils.ParseDate(r.URL.Query().Get("from"), h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := utils.ParseDate(r.URL.Query().Get("to"), h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := utils.ValidateDateRange(from, to, h.config.Attendance.MaxRangeDays); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func (h *Handler) writeXLSX(w http.ResponseWriter, filename string, body *bytes.Buffer) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = body.WriteTo(w)
}

func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster := h.reports.Roster()

	h.successResponse(w, r, "roster fetched", map[string]any{
		"divisions": roster.Divisions(),
		"entries":   roster.Entries(),
	})
}

func (h *Handler) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r, "date")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	report, err := h.reports.DailyReport(r.Context(), date)
	if err != nil {
		h.reportError(w, r, err)
		return
	}

	h.successResponse(w, r, "daily report generated", report)
}

func (h *Handler) ExportDailyReport(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r, "date")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	report, err := h.reports.DailyReport(r.Context(), date)
	if err != nil {
		h.reportError(w, r, err)
		return
	}

	// 先写到内存中，出错时仍然可以返回 JSON
	var buf bytes.Buffer
	if err := h.exporter.WriteDaily(&buf, report); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.writeXLSX(w, fmt.Sprintf("attendance_%s.xlsx", report.Date.Format(domain.DateLayout)), &buf)
}

func (h *Handler) ExportRangeReport(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.rangeParams(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	reports, err := h.reports.RangeReport(r.Context(), from, to)
	if err != nil {
		h.reportError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.WriteRange(&buf, reports); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", from.Format(domain.DateLayout), to.Format(domain.DateLayout))
	h.writeXLSX(w, filename, &buf)
}

func (h *Handler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	from, to, err := h.rangeParams(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	thresholdHours := h.config.Attendance.AnomalyThresholdHours
	if v := r.URL.Query().Get("thresholdHours"); v != "" {
		thresholdHours, err = strconv.Atoi(v)
		if err != nil || thresholdHours <= 0 {
			h.badRequest(w, r, errors.New("thresholdHours must be a positive integer"))
			return
		}
	}

	anomalies := h.reports.Anomalies(r.Context(), from, to, time.Duration(thresholdHours)*time.Hour)

	h.successResponse(w, r, "anomalies detected", anomalies)
}

func (h *Handler) GetDivisionStats(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r, "date")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	stats, err := h.reports.DivisionStats(r.Context(), date)
	if err != nil {
		h.reportError(w, r, err)
		return
	}

	h.successResponse(w, r, "division statistics generated", stats)
}

func (h *Handler) GetWeeklyTrends(w http.ResponseWriter, r *http.Request) {
	end, err := h.dateParam(r, "end")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	weeks := defaultTrendWeeks
	if v := r.URL.Query().Get("weeks"); v != "" {
		if weeks, err = strconv.Atoi(v); err != nil {
			h.badRequest(w, r, errors.New("weeks must be an integer"))
			return
		}
	}
	if err := utils.ValidateWeeks(weeks); err != nil {
		h.badRequest(w, r, err)
		return
	}

	trends := h.reports.WeeklyTrends(r.Context(), end, weeks)

	h.successResponse(w, r, "weekly trends generated", trends)
}

func (h *Handler) EmailDailyReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date" validate:"required,datetime=2006-01-02"`
		To   string `json:"to" validate:"required,email"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	// 准备邮件
	mailMessage := domain.MailMessage{
		ID:   uuid.NewString(),
		Type: domain.MailTypeDailyReport,
		To:   req.To,
		Data: domain.DailyReportMailData{
			Date:        req.Date,
			RequestedBy: myInfo.FullName,
		},
	}

	// 序列化邮件
	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 发送邮件到消息队列中
	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.Queue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    mailMessage.ID,
			Timestamp:    time.Now(),
			Body:         mailData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "report e-mail queued", map[string]string{"id": mailMessage.ID})
}
