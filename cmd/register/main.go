// Command register writes an operator license record for this machine.
//
// It prints the local IP address and machine identifier, shows an existing
// record and asks before overwriting it, then saves the entered license key
// together with the current identifier.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"autonaver/internal/app"
	"autonaver/internal/config"
	"autonaver/internal/hardware"
	"autonaver/internal/infrastructure"
)

const banner = "=================================================="

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("register", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "config file (default $"+config.ConfigEnvVar+")")
	key := flags.String("key", "", "license key; prompts when empty")
	assumeYes := flags.Bool("yes", false, "answer yes to every confirmation")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "설정을 불러올 수 없습니다: %v\n", err)
		return 1
	}

	ctx, stop := app.SignalContext(context.Background())
	defer stop()
	ctx = infrastructure.EnsureTraceID(ctx)

	application, err := app.NewApplication(ctx, cfg, app.Options{})
	if err != nil {
		fmt.Fprintf(stderr, "초기화에 실패했습니다: %v\n", err)
		return 1
	}
	defer application.Close(context.Background())

	sess := &session{in: bufio.NewScanner(stdin), out: stdout, assumeYes: *assumeYes}
	return register(ctx, application, hardware.LocalIP(ctx), sess, *key)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// register runs the interactive registration against application.
func register(ctx context.Context, application *app.Application, localIP string, sess *session, key string) int {
	out := sess.out
	fmt.Fprintln(out, banner)
	fmt.Fprintln(out, "네이버 블로그 자동화 - 라이선스 등록 도구")
	fmt.Fprintln(out, banner)

	resolution := application.Resolver.Resolve(ctx)
	fmt.Fprintf(out, "\n현재 IP 주소: %s\n", localIP)
	fmt.Fprintf(out, "머신 ID: %s\n", resolution.ID)

	if existing, ok := application.Records.Load(ctx); ok {
		fmt.Fprintln(out, "\n[기존 라이선스 정보]")
		fmt.Fprintf(out, "상태: %s\n", existing.Status)
		fmt.Fprintf(out, "등록 IP: %s\n", existing.LocalIP)
		fmt.Fprintf(out, "등록일: %s\n", existing.RegisteredDate)
		if !sess.confirm("\n기존 라이선스를 덮어쓰시겠습니까? (y/n): ") {
			fmt.Fprintln(out, "취소되었습니다.")
			return 0
		}
	}

	fmt.Fprintln(out, "\n[새 라이선스 등록]")
	if key = strings.TrimSpace(key); key == "" {
		key = sess.ask("라이선스 키를 입력하세요: ")
	}
	if key == "" {
		fmt.Fprintln(out, "라이선스 키가 입력되지 않았습니다.")
		return 1
	}

	fmt.Fprintf(out, "\n다음 머신 ID로 등록됩니다: %s\n", resolution.ID)
	if !sess.confirm("계속하시겠습니까? (y/n): ") {
		fmt.Fprintln(out, "취소되었습니다.")
		return 0
	}

	rec, err := application.Verifier.Register(ctx, key)
	if err != nil {
		application.Logger.ErrorContext(ctx, "Registration failed", slog.String("error", err.Error()))
		fmt.Fprintf(out, "\n라이선스 등록에 실패했습니다: %v\n", err)
		return 1
	}

	fmt.Fprintln(out, "\n라이선스가 성공적으로 등록되었습니다!")
	fmt.Fprintf(out, "등록 IP: %s\n", rec.LocalIP)
	fmt.Fprintf(out, "머신 ID: %s\n", rec.RegisteredMachineID)
	return 0
}

// session reads answers line by line.
type session struct {
	in        *bufio.Scanner
	out       io.Writer
	assumeYes bool
}

func (s *session) ask(prompt string) string {
	fmt.Fprint(s.out, prompt)
	if !s.in.Scan() {
		return ""
	}
	return strings.TrimSpace(s.in.Text())
}

func (s *session) confirm(prompt string) bool {
	if s.assumeYes {
		fmt.Fprintln(s.out, prompt+"y")
		return true
	}
	return strings.EqualFold(s.ask(prompt), "y")
}
