// Package cli команды командной строки сервиса.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fsdevblog/shortlinks/internal/bmeta"
	"github.com/fsdevblog/shortlinks/internal/config"
	"github.com/fsdevblog/shortlinks/internal/logs"
)

const flagConfig = "config"

// NewRootCommand корневая команда. Без подкоманды запускает сервер.
func NewRootCommand(info bmeta.Info) *cobra.Command {
	root := &cobra.Command{
		Use:           "shortener",
		Short:         "URL shortener with base62 keys",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runServe,
	}

	root.PersistentFlags().String(flagConfig, "", "Путь к yaml файлу конфигурации")
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCreateCommand(),
		newResolveCommand(),
		newEncodeCommand(),
		newDecodeCommand(),
		newVersionCommand(info),
	)
	return root
}

// loadConfig собирает конфигурацию с учетом флагов команды.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if configFile == "" {
		configFile = config.ConfigFileFromEnv()
	}
	return config.Load(configFile, cmd.Flags()) //nolint:wrapcheck
}

func newLogger(cmd *cobra.Command, conf *config.Config) (*logrus.Logger, error) {
	return logs.New( //nolint:wrapcheck
		logs.WithLevel(conf.LogLevel),
		logs.WithOutput(cmd.ErrOrStderr()),
	)
}
