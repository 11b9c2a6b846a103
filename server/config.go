package server

type Config struct {
	SocketConfig struct{
		PingPeriodTime int `default:"8000"`
		PongWaitTime int `default:"10000"`
		WriteWaitTime int `default:"5000"`
		ReceivedMessageDecrementCount int `default:"20"`
		OutgoingQueueSize int `default:"64"`
		MaxMessageSize int64 `default:"4096"`
	}
	DBConfig struct{
		ConnString string `default:""`
		Database string `default:"standoff"`
	}
	RedisConfig struct{
		ConnString string `default:""`
		CluesterEnabled bool `default:"false"`
		PoolSize int `default:"10"`
	}
	RabbitMQ struct{
		ConnectionString string `default:""`
		Exchange string `default:"standoff"`
	}
	AuthConfig struct{
		JWTSecret string `default:"asdasdqweqasdqwwe"`
		TokenExpireTime int `default:"86400"`
	}
	MatchConfig struct{
		DefaultGame string `default:"standoff"`
		MinPlayers int `default:"2"`
		MaxPlayers int `default:"8"`
		StartingHealth int `default:"3"`
		MaxHealth int `default:"3"`
		StartingAmmo int `default:"1"`
		MaxAmmo int `default:"0"`
		SuperShootCost int `default:"3"`
		//Milliseconds
		RoundDuration int `default:"10000"`
		IntermissionDuration int `default:"3000"`
		TickInterval int `default:"100"`
		//one_hit or accumulate
		DamagePolicy string `default:"one_hit"`
		RoleKillThreshold int `default:"2"`
		RoleProbability float64 `default:"0.5"`
		RolePassiveHeal int `default:"1"`
		RolePartialHeal int `default:"1"`
	}
	ContextConfig struct{
		TemplateName string `default:"lobby"`
		Prefix string `default:"match-"`
		MaxContexts int `default:"1000"`
	}
	ProfileConfig struct{
		TimeoutMs int `default:"1500"`
		KeyPrefix string `default:"profile-"`
	}
	Port int `default:"7350"`
	ApiURL string `default:"http://localhost"`
	MaxRequestBodySize int64 `default:"4096"`
	DevelopmentEnabled bool `default:"false"`
	NodeID string `default:""`
	NotificationConfig struct{
		AppKey string
		AppID string
	}
}
