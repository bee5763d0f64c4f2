package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/wedabay-ops/duty-attendance/backend/internal/config"
	"github.com/wedabay-ops/duty-attendance/backend/internal/domain"
	"github.com/wedabay-ops/duty-attendance/backend/internal/export"
	"github.com/wedabay-ops/duty-attendance/backend/internal/report"
	"github.com/wedabay-ops/duty-attendance/backend/internal/repository"
	"github.com/wedabay-ops/duty-attendance/backend/internal/utils"
	"github.com/wneessen/go-mail"
)

const reportBuildTimeout = 60 * time.Second

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("failed to create mail client", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("failed to connect to mail server", slog.String("error", err.Error()))
		return
	}

	tmpl, err := template.ParseFiles(filepath.Join(cfg.Email.TemplateDir, "daily_report_email.html"))
	if err != nil {
		logger.Error("failed to parse mail template", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 组装报表服务，只有 postgres 数据源才需要数据库
	 **********************************************/
	var repo *repository.Repository
	if cfg.Source.Driver == "postgres" {
		dbpool, err := sql.Open("pgx", cfg.Database.DSN)
		if err != nil {
			logger.Error("failed to open database pool", slog.String("error", err.Error()))
			return
		}
		defer dbpool.Close()
		dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		repo = repository.NewRepository(cfg, dbpool)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	reports, err := report.NewFromConfig(cfg, repo, rdb)
	if err != nil {
		logger.Error("failed to create report service", slog.String("error", err.Error()))
		return
	}
	exporter := export.NewExporter()
	loc := cfg.Location()

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("failed to open channel", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 声明队列
	q, err := ch.QueueDeclare(
		cfg.RabbitMQ.Queue, // 队列名称
		true,               // 是否持久化
		false,              // 是否自动删除
		false,              // 是否独占
		false,              // 是否不等待
		nil,                // 额外参数
	)
	if err != nil {
		logger.Error("failed to declare queue", slog.String("error", err.Error()))
		return
	}

	// 一次只处理一封，生成报表比较耗时
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error("failed to set prefetch count", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识
		false,  // 手动确认
		false,  // 是否独占队列
		false,  // no-local
		false,  // 是否不等待
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("failed to consume messages", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Warn("delivery channel closed")
					return
				}
				logger.Info("message received", slog.String("id", msg.MessageId))

				// 对邮件信息反序列化
				data := domain.DailyReportMailData{}
				mailMessage := domain.MailMessage{Data: &data}
				if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
					logger.Error("failed to decode mail message", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if mailMessage.Type != domain.MailTypeDailyReport {
					logger.Error("unsupported mail type", slog.String("type", mailMessage.Type))
					_ = msg.Nack(false, false)
					continue
				}

				date, err := utils.ParseDate(data.Date, loc)
				if err != nil {
					logger.Error("invalid date in mail message", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				// 生成日报，数据源不可用时丢弃任务，避免反复重试
				buildCtx, buildCancel := context.WithTimeout(ctx, reportBuildTimeout)
				dayReport, err := reports.DailyReport(buildCtx, date)
				buildCancel()
				if err != nil {
					logger.Error("failed to build daily report", slog.String("date", data.Date), slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				// 构建邮件
				m, err := buildDailyReportMail(cfg, tmpl, exporter, mailMessage.To, data, dayReport)
				if err != nil {
					logger.Error("failed to build mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				// 发送邮件
				if err := client.DialAndSend(m); err != nil {
					logger.Error("failed to send mail", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}

				// 确认消息
				_ = msg.Ack(false)
				logger.Info("daily report mail sent", slog.String("id", mailMessage.ID), slog.String("date", data.Date))
			}
		}
	}()

	// 等待 CTRL+C 信号
	logger.Info("waiting for messages... (press CTRL+C to exit)")
	<-sigChan

	// 优雅退出
	slog.Info("shutting down mail worker...")
	cancel()
	wg.Wait() // 等待所有 goroutine 完成
	slog.Info("mail worker stopped")
}

func buildDailyReportMail(cfg *config.Config, tmpl *template.Template, exporter *export.Exporter, to string, data domain.DailyReportMailData, dayReport *domain.DayReport) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(cfg.Email.SMTP.Username); err != nil {
		return nil, err
	}
	if err := m.To(to); err != nil {
		return nil, err
	}

	view := domain.DailyReportMailView{
		Date:        data.Date,
		RequestedBy: data.RequestedBy,
		Metrics:     dayReport.Metrics,
	}
	if err := m.SetBodyHTMLTemplate(tmpl, view); err != nil {
		return nil, err
	}
	m.Subject(fmt.Sprintf("Daily Attendance Report - %s", data.Date))

	// 附件
	var buf bytes.Buffer
	if err := exporter.WriteDaily(&buf, dayReport); err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("attendance_%s.xlsx", data.Date)
	if err := m.AttachReader(filename, &buf, mail.WithFileContentType(mail.ContentType(export.ContentType))); err != nil {
		return nil, err
	}

	return m, nil
}
