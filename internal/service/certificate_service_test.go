package service

import (
	"context"
	"errors"
	"testing"

	"campus-portal/backend/internal/dto"
	"campus-portal/backend/internal/model"
	"campus-portal/backend/internal/seed"
	pkgerrors "campus-portal/backend/pkg/errors"
)

// setupTestCertificateService 载入演示证书目录
func setupTestCertificateService(t *testing.T) CertificateService {
	t.Helper()
	repo := newTestRepo()
	for _, c := range seed.Certificates() {
		c := c
		if err := repo.Certificate.Create(context.Background(), &c); err != nil {
			t.Fatalf("写入证书失败: %v", err)
		}
	}
	return NewCertificateService(repo, nop)
}

func firstAvailable(t *testing.T, svc CertificateService) string {
	t.Helper()
	list, _, err := svc.Catalog(context.Background(), studentIdentity(), &dto.ListRequest{})
	if err != nil {
		t.Fatalf("Catalog 失败: %v", err)
	}
	for _, c := range list {
		if c.Available {
			return c.ID
		}
	}
	t.Fatal("没有可申请的证书")
	return ""
}

func TestCertificateService_Catalog(t *testing.T) {
	svc := setupTestCertificateService(t)

	list, total, err := svc.Catalog(context.Background(), studentIdentity(), &dto.ListRequest{})
	if err != nil {
		t.Fatalf("Catalog 失败: %v", err)
	}
	if total != int64(len(seed.Certificates())) || len(list) != len(seed.Certificates()) {
		t.Errorf("期望 %d 个证书，实际=%d", len(seed.Certificates()), total)
	}

	var unavailable int
	for _, c := range list {
		if !c.Available {
			unavailable++
			if c.UnavailableReason == "" {
				t.Errorf("不可申请的证书 %s 应给出原因", c.Name)
			}
		}
	}
	if unavailable == 0 {
		t.Error("演示目录中应至少有一个不可申请的证书")
	}
}

func TestCertificateService_RequestUnavailable(t *testing.T) {
	svc := setupTestCertificateService(t)
	ctx := context.Background()

	list, _, _ := svc.Catalog(ctx, studentIdentity(), &dto.ListRequest{})
	for _, c := range list {
		if c.Available {
			continue
		}
		_, err := svc.Request(ctx, studentIdentity(), &dto.RequestCertificateRequest{CertificateID: c.ID})
		if !errors.Is(err, ErrCertificateUnavailable) {
			t.Errorf("期望 ErrCertificateUnavailable，实际: %v", err)
		}
	}

	if _, err := svc.Request(ctx, studentIdentity(), &dto.RequestCertificateRequest{CertificateID: "missing"}); !errors.Is(err, ErrCertificateNotFound) {
		t.Errorf("期望 ErrCertificateNotFound，实际: %v", err)
	}
}

func TestCertificateService_RequestAndProcess(t *testing.T) {
	svc := setupTestCertificateService(t)
	ctx := context.Background()
	certID := firstAvailable(t, svc)

	r1, err := svc.Request(ctx, studentIdentity(), &dto.RequestCertificateRequest{CertificateID: certID})
	if err != nil {
		t.Fatalf("申请失败: %v", err)
	}
	if r1.Status != model.CertificateProcessing || r1.StudentName != "Priya Sharma" {
		t.Errorf("新申请应为 Processing: %+v", r1)
	}
	r2, _ := svc.Request(ctx, otherStudentIdentity(), &dto.RequestCertificateRequest{CertificateID: certID})

	// 学生只看到自己的申请，教师看到全部
	mine, _, _ := svc.ListRequests(ctx, studentIdentity(), &dto.ListRequest{})
	if len(mine) != 1 || mine[0].ID != r1.ID {
		t.Errorf("学生应只看到自己的申请: %+v", mine)
	}
	all, total, _ := svc.ListRequests(ctx, facultyIdentity(), &dto.ListRequest{})
	if total != 2 || len(all) != 2 {
		t.Errorf("教师应看到全部申请，实际=%d", total)
	}

	if _, err := svc.Process(ctx, studentIdentity(), r1.ID, &dto.ProcessCertificateRequest{Status: model.CertificateCompleted}); !errors.Is(err, pkgerrors.ErrForbidden) {
		t.Errorf("学生处理申请应返回 Forbidden，实际: %v", err)
	}

	done, err := svc.Process(ctx, facultyIdentity(), r1.ID, &dto.ProcessCertificateRequest{Status: model.CertificateCompleted, FileURL: "https://files.example.edu/c/1.pdf"})
	if err != nil {
		t.Fatalf("处理申请失败: %v", err)
	}
	if done.Status != model.CertificateCompleted || done.GeneratedAt == nil || done.FileURL == "" {
		t.Errorf("完成的申请应带生成时间与文件: %+v", done)
	}

	// 已处理的申请不能再次处理
	if _, err := svc.Process(ctx, facultyIdentity(), r1.ID, &dto.ProcessCertificateRequest{Status: model.CertificateRejected}); !errors.Is(err, ErrCertificateAlreadyHandled) {
		t.Errorf("期望 ErrCertificateAlreadyHandled，实际: %v", err)
	}

	rejected, err := svc.Process(ctx, facultyIdentity(), r2.ID, &dto.ProcessCertificateRequest{Status: model.CertificateRejected})
	if err != nil || rejected.GeneratedAt != nil {
		t.Errorf("驳回不应生成文件: %+v err=%v", rejected, err)
	}

	if _, err := svc.Process(ctx, facultyIdentity(), "missing", &dto.ProcessCertificateRequest{Status: model.CertificateRejected}); !errors.Is(err, ErrCertificateRequestNotFound) {
		t.Errorf("期望 ErrCertificateRequestNotFound，实际: %v", err)
	}
}

func TestCertificateService_StorageError(t *testing.T) {
	repo := newTestRepo()
	repo.CertificateRequest = failingCollection[model.CertificateRequest]{}
	svc := NewCertificateService(repo, nop)

	_, _, err := svc.ListRequests(context.Background(), facultyIdentity(), &dto.ListRequest{})
	if !errors.Is(err, errStorage) {
		t.Errorf("期望存储错误透传，实际: %v", err)
	}
}
