package internal

import "time"

type Config struct {
	BadgerFilepath  string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel        string        `env:"LOG_LEVEL,required=true"`
	BotUserID       int64         `env:"BOT_USER_ID,required=true"`
	BufferSize      int           `env:"BUFFER_SIZE,required=true"`
	LaneBufferSize  int           `env:"LANE_BUFFER_SIZE,required=true"`
	ActionQueueSize int           `env:"ACTION_QUEUE_SIZE,required=true"`
	GracePeriod     time.Duration `env:"GRACE_PERIOD,required=true"`
	KickBanWindow   time.Duration `env:"KICK_BAN_WINDOW,required=true"`
	ActionTimeout   time.Duration `env:"ACTION_TIMEOUT,required=true"`
	MetricInterval  time.Duration `env:"METRIC_INTERVAL,required=true"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,required=true"`

	MailFrom     string        `env:"MAIL_FROM"`
	MailErrorsTo string        `env:"MAIL_ERRORS_TO"`
	MailMinGap   time.Duration `env:"MAIL_MIN_GAP"`
}
