package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/filtering"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/ranker"
	"github.com/spigell/resume-ranker/internal/session"
)

const (
	app       = "resume-ranker"
	envPrefix = "RESUME_RANKER"
)

type Config struct {
	Server   *ServerConfig   `mapstructure:"server"`
	Upload   *UploadConfig   `mapstructure:"upload"`
	Download *DownloadConfig `mapstructure:"download"`
	Filters  *FiltersConfig  `mapstructure:"filters"`
}

type ServerConfig struct {
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user-agent"`
	DownloadPath string        `mapstructure:"download-path"`
}

type UploadConfig struct {
	RequireJobDescription bool `mapstructure:"require-job-description"`
}

type DownloadConfig struct {
	Dir string `mapstructure:"dir"`
}

type FiltersConfig struct {
	MinimumScore     float64  `mapstructure:"minimum-score"`
	ExcludeFilenames []string `mapstructure:"exclude-filenames"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resume-ranker uploads resumes for evaluation against a job description and browses the ranked results",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resume-ranker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("server", "s", "", "base url of the evaluation service")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))

	viper.SetDefault("server.url", ranker.DefaultAPIURL)
	viper.SetDefault("server.timeout", time.Duration(0))
	viper.SetDefault("server.user-agent", "")
	viper.SetDefault("server.download-path", ranker.DefaultDownloadPath)
	viper.SetDefault("upload.require-job-description", true)
	viper.SetDefault("download.dir", ".")
	viper.SetDefault("filters.minimum-score", 0.0)
	viper.SetDefault("filters.exclude-filenames", []string{})
}

func initConfig() {
	// .env is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// The config file is optional unless it was requested explicitly.
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{URL: ranker.DefaultAPIURL}
	}
	if config.Upload == nil {
		config.Upload = &UploadConfig{RequireJobDescription: true}
	}
	if config.Download == nil {
		config.Download = &DownloadConfig{Dir: "."}
	}

	return config, nil
}

// setup builds the logger, the config and a fresh session. It exits the
// process on failure.
func setup() (*zap.Logger, *Config, *session.Session) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting", zap.String("version", version), zap.Any("config", config))

	client := ranker.New(logger, config.Server.URL).WithTimeout(config.Server.Timeout)
	if config.Server.UserAgent != "" {
		client.UserAgent = config.Server.UserAgent
	}
	if config.Server.DownloadPath != "" {
		client.DownloadPath = config.Server.DownloadPath
	}

	opts := session.Options{
		RequireJobDescription: config.Upload.RequireJobDescription,
		Saver:                 &session.FileSaver{Dir: config.Download.Dir},
	}
	if config.Filters != nil {
		filters, err := filtering.Default(&filtering.Config{
			MinimumScore:     config.Filters.MinimumScore,
			ExcludeFilenames: config.Filters.ExcludeFilenames,
		}, logger)
		if err != nil {
			logger.Fatal("configuring filters", zap.Error(err))
		}

		for _, status := range filters.Describe() {
			logger.Debug("filter",
				zap.String("name", status.Name),
				zap.Bool("enabled", status.Enabled),
				zap.String("reason", status.Reason),
				zap.Any("details", status.Details),
			)
		}

		opts.Filters = filters
	}

	return logger, config, session.New(client, opts, logger)
}
