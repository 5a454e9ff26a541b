package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/futig/bms-rag/internal/entity"
)

// Telegram rejects messages longer than this
const maxMessageLength = 4096

const (
	MsgWelcome = `👋 Hi! I answer questions about the BMS TARA knowledge base.

Ask in plain language, for example:
• Which assets are connected to the battery cell?
• What damage scenarios affect the BMS ECU?

I reply with a short summary and the matching documents as a JSON file.`

	MsgHelp = `🤖 Commands:

/start - Show the welcome message
/help - Show this help
/history - List your last queries

Any other text is treated as a query.`

	MsgNoHistory     = `📭 No history yet.`
	MsgHistoryHeader = `🕘 Last queries:`
	MsgUnknownCmd    = `❌ Unknown command. Use /help`
	MsgResultCaption = `📎 Matching documents`

	MsgParseFailure = `⚠️ The model reply was not valid JSON, so nothing was saved.

%s`

	ErrGeneric            = `❌ Something went wrong. Please try again.`
	ErrEmptyQuery         = `❌ The query is empty. Type a question.`
	ErrQueryTooLong       = `❌ The query is too long. Please shorten it.`
	ErrNetworkIssue       = `❌ Connection problem. Please try again later.`
	ErrServiceUnavailable = `❌ The service is temporarily unavailable. Try again in a couple of minutes.`
	ErrTimeout            = `❌ The query took too long. Please try again.`
	ErrQuotaExceeded      = `❌ The model quota is exhausted. Wait a little.`
)

// RenderSummary formats the intent and the section counts of a parsed answer
func RenderSummary(answer *entity.Answer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔎 Intent: %s\n", answer.Intent)
	if len(answer.Sections) == 0 {
		sb.WriteString("\nNo sections in the reply.")
		return sb.String()
	}

	sb.WriteString("\n")
	for _, s := range answer.Sections {
		fmt.Fprintf(&sb, "• %s: %d item(s)\n", s.Name, s.Count)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RenderParseFailure formats an unparsable reply, cut to the message limit
func RenderParseFailure(parseErr string) string {
	return truncate(fmt.Sprintf(MsgParseFailure, parseErr))
}

// RenderHistory formats history entries oldest first
func RenderHistory(entries []*entity.HistoryEntry) string {
	if len(entries) == 0 {
		return MsgNoHistory
	}

	var sb strings.Builder
	sb.WriteString(MsgHistoryHeader)
	for i, e := range entries {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, e.Query)
	}
	return truncate(sb.String())
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) <= maxMessageLength {
		return text
	}
	return string(r[:maxMessageLength-1]) + "…"
}

// ClassifyError analyzes an error and returns an appropriate user-friendly message
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	switch {
	case errors.Is(err, entity.ErrEmptyQuery), errors.Is(err, entity.ErrMissingField):
		return ErrEmptyQuery
	case errors.Is(err, entity.ErrInvalidParameter):
		return ErrQueryTooLong
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return ErrServiceUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrTimeout
		}
		return ErrNetworkIssue
	}

	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "connection refused"):
		return ErrServiceUnavailable
	case strings.Contains(errMsg, "timeout"):
		return ErrTimeout
	case strings.Contains(errMsg, "quota"), strings.Contains(errMsg, "resource_exhausted"):
		return ErrQuotaExceeded
	case strings.Contains(errMsg, "unavailable"):
		return ErrServiceUnavailable
	case strings.Contains(errMsg, "network"):
		return ErrNetworkIssue
	}

	return ErrGeneric
}
