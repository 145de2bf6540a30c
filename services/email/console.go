package emailsvc

import (
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/edulane/gurukul/core"
)

var (
	// SentMessages records everything handed to the console service; tests
	// assert against it.
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

// NewConsoleService returns an EmailService that writes messages to stdout;
// used in debug mode.
func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFrom(),
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

// NewConsoleServiceMock silences output; messages are still recorded in
// SentMessages.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFrom(),
		subjPrefix:       "[" + conf.AppName + "] ",
		disableOutput:    true,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}

	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()

	if svc.disableOutput {
		return
	}

	var sb strings.Builder
	sb.WriteString("From: " + svc.defaultFromEmail.String() + "\n")
	sb.WriteString("To: " + joinAddresses(msg.To) + "\n")
	if len(msg.Cc) > 0 {
		sb.WriteString("Cc: " + joinAddresses(msg.Cc) + "\n")
	}
	sb.WriteString("Subject: " + svc.subjPrefix + msg.Subject + "\n\n")
	sb.WriteString(msg.BodyStr)
	fmt.Println(sb.String())
}

func joinAddresses(addrs []mail.Address) string {
	ss := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		ss = append(ss, addr.String())
	}
	return strings.Join(ss, ", ")
}
