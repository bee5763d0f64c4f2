package config

import (
	"errors"
	"io/fs"
	"time"
	_ "time/tzdata" // 容器镜像中通常没有时区数据库

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string   `env:"PORT" envDefault:"3000"`
		ReadTimeout     int      `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int      `env:"WRITE_TIMEOUT" envDefault:"30"`
		IdleTimeout     int      `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int      `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		AllowedOrigins  []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"System Administrator"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"24"` // 小时
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"changeme123"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
	Email struct {
		UserDomain string `env:"USER_DOMAIN" envDefault:"example.com"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
		TemplateDir string `env:"TEMPLATE_DIR" envDefault:"./templates"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
		Queue          string `env:"QUEUE" envDefault:"report_email_queue"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		DB               int    `env:"DB" envDefault:"0"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"3"`
	} `envPrefix:"REDIS_"`
	Cache struct {
		TTL          int `env:"TTL" envDefault:"10"`           // 秒
		FetchTimeout int `env:"FETCH_TIMEOUT" envDefault:"30"` // 秒
	} `envPrefix:"CACHE_"`
	Source struct {
		Driver      string `env:"DRIVER" envDefault:"sheets"`
		EventsURL   string `env:"EVENTS_URL"`
		StatusURL   string `env:"STATUS_URL"`
		HTTPTimeout int    `env:"HTTP_TIMEOUT" envDefault:"15"`
	} `envPrefix:"SOURCE_"`
	Attendance struct {
		Timezone              string `env:"TIMEZONE" envDefault:"Asia/Jayapura"`
		ShortWeekday          int    `env:"SHORT_WEEKDAY" envDefault:"5"`
		LateThreshold         string `env:"LATE_THRESHOLD" envDefault:"07:05:00"`
		AnomalyThresholdHours int    `env:"ANOMALY_THRESHOLD_HOURS" envDefault:"12"`
		MaxRangeDays          int    `env:"MAX_RANGE_DAYS" envDefault:"62"`
	} `envPrefix:"ATTENDANCE_"`
	RosterFile string `env:"ROSTER_FILE" envDefault:"./configs/roster.json"`
}

func LoadConfig() (*Config, error) {
	// .env 只在本地开发时存在
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Attendance.ShortWeekday < 0 || c.Attendance.ShortWeekday > 6 {
		return errors.New("ATTENDANCE_SHORT_WEEKDAY must be between 0 (Sunday) and 6 (Saturday)")
	}
	if _, err := time.LoadLocation(c.Attendance.Timezone); err != nil {
		return err
	}
	if _, err := time.Parse("15:04:05", c.Attendance.LateThreshold); err != nil {
		return errors.New("ATTENDANCE_LATE_THRESHOLD must use HH:MM:SS")
	}
	switch c.Source.Driver {
	case "sheets":
		if c.Source.EventsURL == "" || c.Source.StatusURL == "" {
			return errors.New("SOURCE_EVENTS_URL and SOURCE_STATUS_URL are required for the sheets driver")
		}
	case "postgres":
	default:
		return errors.New("SOURCE_DRIVER must be sheets or postgres")
	}
	return nil
}

// Location 返回考勤所用的时区，validate 已经保证其可以加载
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LateThresholdOffset 返回迟到阈值距离零点的时长
func (c *Config) LateThresholdOffset() time.Duration {
	t, err := time.Parse("15:04:05", c.Attendance.LateThreshold)
	if err != nil {
		return 7*time.Hour + 5*time.Minute
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
}
