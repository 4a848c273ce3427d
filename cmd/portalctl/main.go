// portalctl 门户命令行客户端：登录状态保存在本地文件，每次执行命令前先重建会话。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"campus-portal/backend/internal/session"
	pkgerrors "campus-portal/backend/pkg/errors"
	"campus-portal/backend/pkg/portalclient"
)

// app 命令共享的依赖，由根命令的 PersistentPreRunE 装配
type app struct {
	v      *viper.Viper
	logger *zap.Logger
	client *portalclient.Client
	store  *session.Store
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{v: viper.New()}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "校园门户命令行客户端",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	defaultTokenFile, err := session.DefaultTokenPath()
	if err != nil {
		defaultTokenFile = ".campus-portal-session.json"
	}

	flags := root.PersistentFlags()
	flags.String("server", "http://localhost:8080", "门户服务地址")
	flags.String("token-file", defaultTokenFile, "本地会话文件")
	flags.Duration("timeout", 10*time.Second, "单次请求超时")
	flags.BoolP("verbose", "v", false, "输出调试日志")

	// 环境变量 PORTALCTL_SERVER / PORTALCTL_TOKEN_FILE ... 覆盖默认值
	a.v.SetEnvPrefix("PORTALCTL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(flags)

	root.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newWhoamiCmd(a),
		newSelectClassCmd(a),
		newLogoutCmd(a),
		newNotesCmd(a),
		newMaintenanceCmd(a),
	)
	return root
}

// setup 构造日志、HTTP 客户端与会话状态，并从本地文件重建会话
func (a *app) setup(ctx context.Context) error {
	level := zapcore.WarnLevel
	if a.v.GetBool("verbose") {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	a.logger = logger

	timeout := a.v.GetDuration("timeout")
	a.client = portalclient.New(a.v.GetString("server"), portalclient.WithTimeout(timeout))
	tokens := session.NewFileTokenStore(a.v.GetString("token-file"))
	a.store = session.NewStore(a.client, tokens, timeout, logger)

	snap := a.store.Start(ctx)
	if snap.Err != nil {
		logger.Debug("会话重建失败", zap.Error(snap.Err))
	}
	return nil
}

// requireSession 需要已登录的命令使用；返回当前 Access Token
func (a *app) requireSession() (string, session.Snapshot, error) {
	snap := a.store.Snapshot()
	if !snap.IsAuthenticated() {
		if snap.Err != nil {
			return "", snap, fmt.Errorf("无法恢复会话: %w", snap.Err)
		}
		return "", snap, errors.New("未登录，请先执行 portalctl login")
	}
	if snap.NeedsClassSelection() {
		return "", snap, errors.New("请先执行 portalctl select-class 选择班级")
	}
	return a.store.AccessToken(), snap, nil
}

// handleRemoteError 服务端判定会话失效时清除本地会话
func (a *app) handleRemoteError(err error) error {
	if errors.Is(err, pkgerrors.ErrAuth) {
		a.store.Invalidate()
		return fmt.Errorf("会话已失效，请重新登录: %w", err)
	}
	return err
}
