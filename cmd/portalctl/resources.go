package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"campus-portal/backend/internal/access"
	"campus-portal/backend/internal/dto"
	"campus-portal/backend/pkg/portalclient"
	"campus-portal/backend/pkg/response"
)

// authorize 在发请求前按本地身份检查能力，服务端仍会再次校验
func (a *app) authorize(res access.Resource, act access.Action) (string, error) {
	token, snap, err := a.requireSession()
	if err != nil {
		return "", err
	}
	if err := access.For(*snap.Identity).Require(res, act); err != nil {
		return "", err
	}
	return token, nil
}

func addListFlags(cmd *cobra.Command, q *portalclient.ListQuery) {
	cmd.Flags().StringVar(&q.Search, "search", "", "关键字")
	cmd.Flags().StringVar(&q.Category, "category", "", "分类")
	cmd.Flags().IntVar(&q.Page, "page", 1, "页码")
	cmd.Flags().IntVar(&q.PageSize, "page-size", 20, "每页条数")
}

func printPagination(w io.Writer, p response.Pagination) {
	fmt.Fprintf(w, "第 %d/%d 页，共 %d 条\n", p.Page, p.TotalPages, p.Total)
}

// ────────────────────── 笔记 ──────────────────────

func newNotesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "notes", Short: "学习笔记"}

	var q portalclient.ListQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "笔记列表（--category 按科目过滤）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.authorize(access.Notes, access.View)
			if err != nil {
				return err
			}
			page, err := a.client.ListNotes(cmd.Context(), token, q)
			if err != nil {
				return a.handleRemoteError(err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\t标题\t科目\t作者\t浏览")
			for _, n := range page.List {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", n.ID, n.Title, n.Subject, n.Author, n.Views)
			}
			_ = tw.Flush()
			printPagination(cmd.OutOrStdout(), page.Pagination)
			return nil
		},
	}
	addListFlags(list, &q)

	var req dto.CreateNoteRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "上传笔记",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Subject) == "" {
				return fmt.Errorf("需要 --title 与 --subject")
			}
			token, err := a.authorize(access.Notes, access.Create)
			if err != nil {
				return err
			}
			note, err := a.client.CreateNote(cmd.Context(), token, &req)
			if err != nil {
				return a.handleRemoteError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已上传笔记 %s\n", note.ID)
			return nil
		},
	}
	create.Flags().StringVar(&req.Title, "title", "", "标题")
	create.Flags().StringVar(&req.Subject, "subject", "", "科目")
	create.Flags().StringVar(&req.Description, "description", "", "简介")
	create.Flags().StringVar(&req.Content, "content", "", "正文")
	create.Flags().StringVar(&req.FileType, "file-type", "PDF", "文件类型")
	create.Flags().StringVar(&req.Tags, "tags", "", "标签，逗号分隔")

	cmd.AddCommand(list, create)
	return cmd
}

// ────────────────────── 报修 ──────────────────────

func newMaintenanceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "maintenance", Short: "报修工单"}

	var q portalclient.ListQuery
	list := &cobra.Command{
		Use:   "list",
		Short: "工单列表（学生只能看到自己的工单）",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.authorize(access.Maintenance, access.View)
			if err != nil {
				return err
			}
			page, err := a.client.ListMaintenance(cmd.Context(), token, q)
			if err != nil {
				return a.handleRemoteError(err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\t标题\t地点\t优先级\t状态")
			for _, m := range page.List {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Title, m.Location, m.Priority, m.Status)
			}
			_ = tw.Flush()
			printPagination(cmd.OutOrStdout(), page.Pagination)
			return nil
		},
	}
	addListFlags(list, &q)
	list.Flags().StringVar(&q.Status, "status", "", "状态：Pending / In Progress / Resolved / Rejected")

	var req dto.CreateMaintenanceRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "提交报修",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.authorize(access.Maintenance, access.Create)
			if err != nil {
				return err
			}
			m, err := a.client.CreateMaintenance(cmd.Context(), token, &req)
			if err != nil {
				return a.handleRemoteError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已提交工单 %s（%s）\n", m.ID, m.Status)
			return nil
		},
	}
	create.Flags().StringVar(&req.Title, "title", "", "标题")
	create.Flags().StringVar(&req.Description, "description", "", "问题描述")
	create.Flags().StringVar(&req.Location, "location", "", "地点")
	create.Flags().StringVar(&req.Category, "category", "", "分类")
	create.Flags().StringVar(&req.Priority, "priority", "Medium", "优先级：Low / Medium / High / Critical")
	_ = create.MarkFlagRequired("title")
	_ = create.MarkFlagRequired("description")
	_ = create.MarkFlagRequired("location")

	var statusReq dto.UpdateMaintenanceStatusRequest
	status := &cobra.Command{
		Use:   "status <工单ID> <状态>",
		Short: "更新工单状态（教师）",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := a.authorize(access.Maintenance, access.UpdateStatus)
			if err != nil {
				return err
			}
			statusReq.Status = args[1]
			m, err := a.client.UpdateMaintenanceStatus(cmd.Context(), token, args[0], &statusReq)
			if err != nil {
				return a.handleRemoteError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "工单 %s 状态: %s\n", m.ID, m.Status)
			return nil
		},
	}
	status.Flags().StringVar(&statusReq.AssignedTo, "assign", "", "指派给")

	cmd.AddCommand(list, create, status)
	return cmd
}
