package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tutu-network/aioncli/internal/banner"
	"github.com/tutu-network/aioncli/internal/config"
	"github.com/tutu-network/aioncli/internal/domain"
	"github.com/tutu-network/aioncli/internal/extract"
	"github.com/tutu-network/aioncli/internal/llm/llmtest"
)

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	prevLogger := slog.Default()
	promptModel = ""
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		resetFlags(rootCmd)
		resetFlags(promptAICmd)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		promptModel = ""
		slog.SetDefault(prevLogger)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// resetFlags clears values cobra keeps between Execute calls.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

// withServer points the CLI environment at a fake completion server.
func withServer(t *testing.T, reply llmtest.Reply, opts ...llmtest.Option) *llmtest.Server {
	t.Helper()
	srv := llmtest.NewServer(t, reply, opts...)
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvAPIKey, "sk-test")
	t.Setenv(config.EnvBaseURL, srv.URL())
	t.Setenv(config.EnvModel, "")
	return srv
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if out != "Version: 0.0.1729\n" {
		t.Errorf("version output = %q, want %q", out, "Version: 0.0.1729\n")
	}
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("--version error: %v", err)
	}
	if !strings.Contains(out, domain.Version) {
		t.Errorf("--version output = %q, want it to contain %q", out, domain.Version)
	}
}

func TestGoodbye(t *testing.T) {
	out, err := runCLI(t, "goodbye")
	if err != nil {
		t.Fatalf("goodbye error: %v", err)
	}
	if out != "Goodbye\n" {
		t.Errorf("goodbye output = %q, want %q", out, "Goodbye\n")
	}
}

func TestGoodbye_RejectsArgs(t *testing.T) {
	if _, err := runCLI(t, "goodbye", "now"); err == nil {
		t.Error("goodbye should reject positional arguments")
	}
}

func TestAsciiart_Deterministic(t *testing.T) {
	first, err := runCLI(t, "asciiart")
	if err != nil {
		t.Fatalf("asciiart error: %v", err)
	}
	second, err := runCLI(t, "asciiart")
	if err != nil {
		t.Fatalf("asciiart error: %v", err)
	}
	if first != second {
		t.Errorf("asciiart output differs between runs:\n%s\n---\n%s", first, second)
	}
	if strings.TrimRight(first, "\n") != strings.TrimRight(banner.Render(domain.BannerLabel), "\n") {
		t.Errorf("asciiart output does not match banner.Render:\n%s", first)
	}
}

func TestPromptAI_Success(t *testing.T) {
	srv := withServer(t, llmtest.FunctionCallReply(domain.OptionsFunctionName,
		`{"option":"call","strike":100,"premium":5}`))

	out, err := runCLI(t, "promptai", "Buy a call with strike 100 and premium 5")
	if err != nil {
		t.Fatalf("promptai error: %v", err)
	}

	want := "Here is your plain English question: Buy a call with strike 100 and premium 5\n" +
		`Here is the JSON extract of key parameters: {"option":"call","premium":5,"strike":100}` + "\n"
	if out != want {
		t.Errorf("promptai output =\n%q\nwant\n%q", out, want)
	}

	reqs := srv.Requests()
	if len(reqs) != 1 {
		t.Fatalf("server saw %d requests, want 1", len(reqs))
	}
	if reqs[0].Model != config.DefaultModel {
		t.Errorf("request model = %q, want %q", reqs[0].Model, config.DefaultModel)
	}
	if reqs[0].FunctionCall != "auto" {
		t.Errorf("request function_call = %v, want auto", reqs[0].FunctionCall)
	}
	if len(reqs[0].Functions) != 1 || reqs[0].Functions[0].Name != domain.OptionsFunctionName {
		t.Errorf("request functions = %+v", reqs[0].Functions)
	}
}

func TestPromptAI_ModelFlag(t *testing.T) {
	srv := withServer(t, llmtest.FunctionCallReply(domain.OptionsFunctionName, `{"option":"put"}`))

	if _, err := runCLI(t, "promptai", "--model", "gpt-4o-mini", "sell a put"); err != nil {
		t.Fatalf("promptai error: %v", err)
	}
	reqs := srv.Requests()
	if len(reqs) != 1 || reqs[0].Model != "gpt-4o-mini" {
		t.Errorf("requests = %+v, want one with model gpt-4o-mini", reqs)
	}
}

func TestPromptAI_ParseFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply llmtest.Reply
	}{
		{"malformed arguments", llmtest.FunctionCallReply(domain.OptionsFunctionName, `{"option": call}`)},
		{"extra closing brace", llmtest.FunctionCallReply(domain.OptionsFunctionName, `{"option":"call"}}`)},
		{"extra closing bracket", llmtest.FunctionCallReply(domain.OptionsFunctionName, `{"option":"call"}]`)},
		{"no function call", llmtest.TextReply("I am not sure what you mean.")},
		{"no choices", llmtest.NoChoicesReply()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withServer(t, tt.reply)

			out, err := runCLI(t, "promptai", "x")
			if err != nil {
				t.Fatalf("promptai returned error %v, want a printed failure", err)
			}
			if !strings.HasPrefix(out, "Here is your plain English question: x\n") {
				t.Errorf("output does not echo question: %q", out)
			}
			if !strings.Contains(out, "Failed to parse response: ") {
				t.Errorf("output = %q, want failure message", out)
			}
			if strings.Contains(out, "JSON extract") {
				t.Errorf("output = %q, should not report success", out)
			}
		})
	}
}

func TestPromptAI_LogDirUnavailable(t *testing.T) {
	withServer(t, llmtest.FunctionCallReply(domain.OptionsFunctionName, `{"option":"put"}`))

	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0600); err != nil {
		t.Fatal(err)
	}
	body := fmt.Sprintf("[logging]\nfile = %q\n", filepath.Join(blocker, "aioncli.log"))
	if err := os.WriteFile(config.Path(), []byte(body), 0600); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "promptai", "sell a put")
	if err != nil {
		t.Fatalf("promptai error = %v, want logging to fall back to stderr", err)
	}
	if !strings.Contains(out, `Here is the JSON extract of key parameters: {"option":"put"}`) {
		t.Errorf("output = %q, want extracted parameters", out)
	}
}

func TestPromptAI_Unauthorized(t *testing.T) {
	withServer(t, llmtest.TextReply("unused"), llmtest.WithAPIKey("sk-other"))

	out, err := runCLI(t, "promptai", "x")
	if err == nil {
		t.Fatal("promptai should fail on 401")
	}
	if extract.IsParseError(err) {
		t.Errorf("401 reported as parse error: %v", err)
	}
	if strings.Contains(out, "Failed to parse response") {
		t.Errorf("output = %q, auth failure should not be printed as a parse failure", out)
	}
}

func TestPromptAI_ServerError(t *testing.T) {
	withServer(t, llmtest.ErrorReply(http.StatusInternalServerError, "boom"))

	if _, err := runCLI(t, "promptai", "x"); err == nil {
		t.Fatal("promptai should fail on 500")
	}
}

func TestPromptAI_MissingAPIKey(t *testing.T) {
	withServer(t, llmtest.TextReply("unused"))
	t.Setenv(config.EnvAPIKey, "")

	out, err := runCLI(t, "promptai", "x")
	if !errors.Is(err, domain.ErrMissingAPIKey) {
		t.Fatalf("promptai error = %v, want ErrMissingAPIKey", err)
	}
	if !strings.Contains(out, "Here is your plain English question: x") {
		t.Errorf("output = %q, want question echoed first", out)
	}
}

func TestPromptAI_RequiresQuestion(t *testing.T) {
	if _, err := runCLI(t, "promptai"); err == nil {
		t.Error("promptai without a question should fail")
	}
}

func TestPromptAIHandler_UsesGivenExtractor(t *testing.T) {
	srv := llmtest.NewServer(t, llmtest.FunctionCallReply(domain.OptionsFunctionName, `{"strike":42}`))
	client, err := extract.NewClient(config.OpenAIConfig{APIKey: "k", BaseURL: srv.URL()})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := promptAI(context.Background(), &out, extract.New(client, "custom-model"), "q"); err != nil {
		t.Fatalf("promptAI error: %v", err)
	}
	if got := out.String(); got != "Here is the JSON extract of key parameters: {\"strike\":42}\n" {
		t.Errorf("output = %q", got)
	}
	if reqs := srv.Requests(); len(reqs) != 1 || reqs[0].Model != "custom-model" {
		t.Errorf("requests = %+v", reqs)
	}
}
