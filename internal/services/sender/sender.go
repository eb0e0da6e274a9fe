// Package services содержит логику отправки писем активации учётной записи.
package services

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/antonovmk/signup-service/internal/config"
	"github.com/antonovmk/signup-service/internal/lib/i18n"
	"github.com/antonovmk/signup-service/internal/lib/sl"
	"github.com/antonovmk/signup-service/internal/lib/smtp"
	"github.com/antonovmk/signup-service/internal/models"
)

// SenderService формирует и отправляет письмо активации.
//
// Результат отправки возвращается вызывающему синхронно: от него зависит,
// будет ли зафиксирована транзакция регистрации.
type SenderService struct {
	transport smtp.TransportInterface
	catalog   *i18n.Catalog
	appURL    string
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(cfg *config.Config, log *slog.Logger, transport smtp.TransportInterface, catalog *i18n.Catalog) *SenderService {
	return &SenderService{
		transport: transport,
		catalog:   catalog,
		appURL:    cfg.AppURL,
		log:       log,
	}
}

// SendActivationEmail отправляет пользователю письмо с токеном активации
// и ссылкой для активации на языке выбранной локали.
func (s *SenderService) SendActivationEmail(user models.User, locale language.Tag) error {
	subject := s.catalog.Message(locale, i18n.MsgActivationEmailSubject)
	link := fmt.Sprintf("%s/api/v1/users/token/%s", s.appURL, user.ActivationToken)
	bodyText := fmt.Sprintf(s.catalog.Message(locale, i18n.MsgActivationEmailBody),
		user.Username, user.ActivationToken, link)

	return s.sendEmail([]string{user.Email}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.GetSMTPUser(), "error", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, "error", sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	_, err = wc.Write([]byte(msg))
	if err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("activation email sent", "to", to)
	return nil
}
