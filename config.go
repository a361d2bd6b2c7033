/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/playr/games/trivia"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	allowedOrigins []string
	bind           string
	metrics        bool
	port           int
	prefix         string
	profile        bool
	questionTime   time.Duration
	questions      string
	resultTime     time.Duration
	sessionTimeout time.Duration
	tlsCert        string
	tlsKey         string
	verbose        bool
	version        bool

	log zerolog.Logger
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.questionTime < time.Second {
		return fmt.Errorf("invalid --question-time (must be at least 1s): %s", c.questionTime)
	}
	if c.resultTime < time.Second {
		return fmt.Errorf("invalid --result-time (must be at least 1s): %s", c.resultTime)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid --session-timeout (must not be negative): %s", c.sessionTimeout)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// roomOptions returns the settings shared by every trivia room.
func (c *Config) roomOptions() (trivia.Options, error) {
	quiz := trivia.DefaultQuiz()

	if c.questions != "" {
		var err error

		quiz, err = trivia.LoadQuiz(c.questions)
		if err != nil {
			return trivia.Options{}, err
		}

		logf(c, "QUIZ: Loaded %d questions from %s", len(quiz), c.questions)
	}

	return trivia.Options{
		Logger:       c.log,
		QuestionTime: c.questionTime,
		ResultTime:   c.resultTime,
		DefaultQuiz:  quiz,
	}, nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PLAYR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "playr",
		Short:         "A self-hosted multiplayer trivia server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}

			cfg.log = newLogger(cfg)

			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "origins allowed to connect from other sites, comma-separated (env: PLAYR_ALLOWED_ORIGINS)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PLAYR_BIND)")
	fs.BoolVar(&cfg.metrics, "metrics", false, "expose prometheus metrics at /metrics (env: PLAYR_METRICS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: PLAYR_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: PLAYR_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: PLAYR_PROFILE)")
	fs.DurationVar(&cfg.questionTime, "question-time", trivia.DefaultQuestionTime, "time players have to answer each question (env: PLAYR_QUESTION_TIME)")
	fs.StringVarP(&cfg.questions, "questions", "q", "", "path to a yaml quiz used when the host sends no questions (env: PLAYR_QUESTIONS)")
	fs.DurationVar(&cfg.resultTime, "result-time", trivia.DefaultResultTime, "time results are shown before the next question (env: PLAYR_RESULT_TIME)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle rooms are closed, 0 to keep them forever (env: PLAYR_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: PLAYR_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: PLAYR_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: PLAYR_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: PLAYR_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("playr v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
