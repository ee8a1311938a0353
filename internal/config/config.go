package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"

	"shopbot/lib/validate"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env-default:"8080"`
}

type TelegramConfig struct {
	ApiKey   string  `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:"" validate:"required"`
	AdminIds []int64 `yaml:"admin_ids" env:"TELEGRAM_ADMIN_IDS"`
}

type DataConfig struct {
	Dir string `yaml:"dir" env-default:"data"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env-default:"false"`
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"27017"`
	User     string `yaml:"user" env-default:""`
	Password string `yaml:"password" env-default:""`
	Database string `yaml:"database" env-default:"shopbot"`
}

// CatalogConfig selects the catalog source for stats cleanup: the JSON
// file under the data dir by default, or the shop's MySQL database when
// enabled.
type CatalogConfig struct {
	MySQLEnabled bool   `yaml:"mysql_enabled" env-default:"false"`
	HostName     string `yaml:"host" env-default:"localhost"`
	Port         string `yaml:"mysql_port" env-default:"3306"`
	UserName     string `yaml:"user" env-default:""`
	Password     string `yaml:"password" env-default:""`
	Database     string `yaml:"database" env-default:""`
	Prefix       string `yaml:"prefix" env-default:"oc_"`
}

type BroadcastConfig struct {
	ProgressEvery int `yaml:"progress_every" env-default:"5"`
	RatePerSec    int `yaml:"rate_per_sec" env-default:"0"`
}

type ApiConfig struct {
	Token string `yaml:"token" env:"API_TOKEN" env-default:""`
}

type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Data      DataConfig      `yaml:"data"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Api       ApiConfig       `yaml:"api"`
	Listen    Listen          `yaml:"listen"`
	Env       string          `yaml:"env" env-default:"local"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("config: %s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
		if err = validate.Struct(instance.Telegram); err != nil {
			instance = nil
			log.Fatal(fmt.Errorf("config: %w", err))
		}
	})
	return instance
}
