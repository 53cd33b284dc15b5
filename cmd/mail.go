package cmd

import (
	"fmt"
	"time"

	"github.com/frahmantamala/hospital-management/internal/mail"
	"github.com/spf13/cobra"
)

var mailCmd = &cobra.Command{
	Use:   "mail",
	Short: "Mail delivery commands",
}

var mailTo string

var mailTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test login code mail",
	Long:  `Send a sample login code through the configured mailer to check SMTP settings. With mail disabled the message is only logged.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		lg := initLogger(cfg)

		notifier := mail.NewNotifier(mail.New(cfg.Mail, lg), cfg.Server.BaseURL, lg)
		if err := notifier.SendLoginOTP(cmd.Context(), mailTo, "Test User", "123456", 5*time.Minute); err != nil {
			return fmt.Errorf("send test mail: %w", err)
		}

		lg.Info("test mail sent", "to", mailTo, "smtp_enabled", cfg.Mail.Enabled)
		return nil
	},
}

func init() {
	mailTestCmd.Flags().StringVar(&mailTo, "to", "", "recipient address")
	_ = mailTestCmd.MarkFlagRequired("to")

	mailCmd.AddCommand(mailTestCmd)
}
