// Package i18n реализует выбор локали по заголовку Accept-Language
// и каталог локализованных сообщений сервиса.
//
// Каталог передается явно в обработчики и сервисы, глобального состояния
// пакет не хранит. Коды ошибок валидации локализации не подлежат:
// локализуется только отображаемый текст.
package i18n

import (
	"golang.org/x/text/language"
)

// Ключи сообщений каталога.
const (
	MsgUserCreated            = "user_created"
	MsgAccountActivated       = "account_activated"
	MsgInvalidToken           = "invalid_token"
	MsgEmailFailure           = "email_failure"
	MsgActivationEmailSubject = "activation_email_subject"
	MsgActivationEmailBody    = "activation_email_body"
)

// supported — поддерживаемые локали; первая является локалью по умолчанию.
var supported = []language.Tag{
	language.English,
	language.Russian,
}

var messages = map[language.Tag]map[string]string{
	language.English: {
		MsgUserCreated:            "User created",
		MsgAccountActivated:       "Account is activated",
		MsgInvalidToken:           "invalid token",
		MsgEmailFailure:           "failed to deliver activation email",
		MsgActivationEmailSubject: "Account activation",
		MsgActivationEmailBody: "Hello, %s!\n\n" +
			"Your activation token is %s.\n" +
			"Follow the link to activate your account: %s",
	},
	language.Russian: {
		MsgUserCreated:            "Пользователь создан",
		MsgAccountActivated:       "Учётная запись активирована",
		MsgInvalidToken:           "недействительный токен",
		MsgEmailFailure:           "не удалось отправить письмо активации",
		MsgActivationEmailSubject: "Активация учётной записи",
		MsgActivationEmailBody: "Здравствуйте, %s!\n\n" +
			"Ваш токен активации: %s.\n" +
			"Для активации учётной записи перейдите по ссылке: %s",
	},
}

// Catalog сопоставляет локаль и ключ сообщения с отображаемым текстом.
type Catalog struct {
	matcher language.Matcher
}

// NewCatalog создает каталог сообщений с поддержкой en и ru локалей.
func NewCatalog() *Catalog {
	return &Catalog{
		matcher: language.NewMatcher(supported),
	}
}

// Negotiate выбирает локаль по значению заголовка Accept-Language.
// Пустой или некорректный заголовок дает локаль по умолчанию.
func (c *Catalog) Negotiate(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, _ := c.matcher.Match(tags...)
	return supported[idx]
}

// Message возвращает текст сообщения по ключу для заданной локали.
// Для неизвестной локали используется локаль по умолчанию,
// для неизвестного ключа возвращается сам ключ.
func (c *Catalog) Message(locale language.Tag, key string) string {
	msgs, ok := messages[locale]
	if !ok {
		msgs = messages[supported[0]]
	}
	if text, ok := msgs[key]; ok {
		return text
	}
	return key
}
