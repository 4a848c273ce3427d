package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/session"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "登录并保存会话",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("需要 --email")
			}
			if password == "" {
				password = a.v.GetString("password")
			}
			if password == "" {
				var err error
				if password, err = promptPassword(cmd.ErrOrStderr()); err != nil {
					return err
				}
			}
			snap, err := a.store.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "邮箱")
	cmd.Flags().StringVar(&password, "password", "", "密码")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var req dto.RegisterRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "注册账号并登录",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Email == "" || strings.TrimSpace(req.Name) == "" {
				return errors.New("需要 --email 与 --name")
			}
			if req.Password == "" {
				var err error
				if req.Password, err = promptPassword(cmd.ErrOrStderr()); err != nil {
					return err
				}
			}
			snap, err := a.store.SignUp(cmd.Context(), &req)
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "邮箱")
	cmd.Flags().StringVar(&req.Password, "password", "", "密码")
	cmd.Flags().StringVar(&req.Name, "name", "", "姓名")
	cmd.Flags().StringVar(&req.Role, "role", "student", "角色：student 或 faculty")
	return cmd
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "显示当前会话",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap := a.store.Snapshot()
			if snap.Err != nil {
				return fmt.Errorf("无法恢复会话: %w", snap.Err)
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

func newSelectClassCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "select-class [班级]",
		Short: "学生选择班级",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list || len(args) == 0 {
				classes, err := a.client.Classes(cmd.Context())
				if err != nil {
					return err
				}
				for _, c := range classes {
					fmt.Fprintln(cmd.OutOrStdout(), c)
				}
				return nil
			}

			if !a.store.Snapshot().IsAuthenticated() {
				return errors.New("未登录，请先执行 portalctl login")
			}
			snap, err := a.store.SelectClass(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSnapshot(cmd.OutOrStdout(), snap)
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "只列出可选班级")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "登出并删除本地会话",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.store.SignOut(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "已登出")
			return nil
		},
	}
}

// promptPassword 在终端上无回显读取密码；标准输入不是终端时报错
func promptPassword(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("需要 --password（或环境变量 PORTALCTL_PASSWORD）")
	}
	fmt.Fprint(w, "密码: ")
	pwd, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("读取密码失败: %w", err)
	}
	if len(pwd) == 0 {
		return "", errors.New("密码不能为空")
	}
	return string(pwd), nil
}

// printSnapshot 输出会话阶段、身份与能力
func printSnapshot(w io.Writer, snap session.Snapshot) {
	fmt.Fprintf(w, "阶段: %s\n", snap.Stage)
	if snap.Identity == nil {
		return
	}
	id := snap.Identity
	fmt.Fprintf(w, "用户: %s <%s>\n角色: %s\n", id.Name, id.Email, id.Role)
	if id.ClassName != "" {
		fmt.Fprintf(w, "班级: %s\n", id.ClassName)
	}
	if snap.NeedsClassSelection() {
		fmt.Fprintln(w, "提示: 请执行 portalctl select-class <班级>")
	}

	resources := make([]string, 0, len(snap.Capabilities))
	for res := range snap.Capabilities {
		resources = append(resources, res)
	}
	sort.Strings(resources)
	for _, res := range resources {
		fmt.Fprintf(w, "  %-13s %s\n", res, strings.Join(snap.Capabilities[res], ", "))
	}
}
