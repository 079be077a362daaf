package license

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "autonaver/internal/errors"
	"autonaver/internal/identity"
	"autonaver/internal/infrastructure"
)

// logAction logs one verifier action with the trace id of ctx.
func (v *Verifier) logAction(ctx context.Context, level slog.Level, action, result string, attrs ...slog.Attr) {
	all := make([]slog.Attr, 0, len(attrs)+3)
	all = append(all,
		slog.String("action", action),
		slog.String("result", result),
	)
	if traceID := infrastructure.TraceIDFromContext(ctx); traceID != "" {
		all = append(all, slog.String("otel_trace_id", traceID))
	}
	all = append(all, attrs...)

	infrastructure.AddSpanEvent(ctx, "license."+action, map[string]any{
		"action": action,
		"result": result,
	})
	v.logger.LogAttrs(ctx, level, "License "+strings.ReplaceAll(action, "_", " "), all...)
}

// logVerification logs the outcome of Verify. Unreachable is a warning;
// the other statuses are regular outcomes.
func (v *Verifier) logVerification(ctx context.Context, result Result, source identity.Source, duration time.Duration) {
	level := slog.LevelInfo
	if result.Status == StatusUnreachable {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("status", string(result.Status)),
		slog.String("machine_id", result.MachineID.Short(shortIDLength)),
		slog.String("identity_source", string(source)),
		slog.Duration("duration", duration),
	}
	if result.Buyer != nil {
		attrs = append(attrs,
			slog.String("buyer_email", maskEmail(result.Buyer.Email)),
			slog.String("expiry_date", result.Buyer.ExpiryDate))
	}
	if err := result.Err(); err != nil {
		attrs = append(attrs,
			slog.String("error", err.Error()),
			slog.String("error_type", string(apperrors.TypeOf(err))),
			slog.Bool("retryable", apperrors.IsRetryable(err)),
			slog.Bool("user_action_required", apperrors.IsUserActionRequired(err)))
	}
	v.logAction(ctx, level, "verify", strings.ToLower(string(result.Status)), attrs...)
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "***"
	}
	_, size := utf8.DecodeRuneInString(email)
	return email[:size] + "***" + email[at:]
}

// maskKey keeps the first four characters of a license key.
func maskKey(key string) string {
	runes := []rune(key)
	if len(runes) <= 4 {
		return "****"
	}
	return string(runes[:4]) + strings.Repeat("*", len(runes)-4)
}
