package services

import (
	"context"
	"errors"
	"testing"

	"github.com/SAP-F-2025/advising-service/internal/events"
	"github.com/SAP-F-2025/advising-service/internal/models"
)

func newRoadmapServiceForTest(t *testing.T) (RoadmapService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()

	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	service := NewRoadmapService(repo, nil, testLogger(), testValidator(), publisher)
	return service, repo, publisher
}

func frontendCreateRequest() *CreateRoadmapRequest {
	return &CreateRoadmapRequest{
		Name: "Frontend Developer",
		Body: models.RoadmapBody{
			"introduction": {
				"html": {
					Description: "Structure of web pages",
					Status:      "pending",
					Skill:       "HTML",
					Subject:     "Web Development",
					Resources:   []models.Resource{{Description: "MDN", Link: "https://developer.mozilla.org"}},
				},
				"css": {
					Description: "Styling web pages",
					Status:      "pending",
					Skill:       "CSS",
					Subject:     "Web Development",
				},
			},
			"frameworks": {
				"react": {
					Description: "Component-based UI",
					Status:      "pending",
					Skill:       "React",
				},
			},
		},
	}
}

func TestRoadmapService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates roadmap", func(t *testing.T) {
		service, _, publisher := newRoadmapServiceForTest(t)

		resp, err := service.Create(ctx, frontendCreateRequest(), "admin-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.Name != "Frontend Developer" {
			t.Errorf("Expected name Frontend Developer, got %s", resp.Name)
		}
		body := resp.Body.Data()
		if len(body) != 2 || len(body["introduction"]) != 2 {
			t.Errorf("Unexpected body shape: %v", body)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.RoadmapCreated {
			t.Errorf("Expected one %s event, got %v", events.RoadmapCreated, published)
		}
	})

	t.Run("nil body becomes empty document", func(t *testing.T) {
		service, _, _ := newRoadmapServiceForTest(t)

		resp, err := service.Create(ctx, &CreateRoadmapRequest{Name: "Empty"}, "admin-1")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if body := resp.Body.Data(); body == nil || len(body) != 0 {
			t.Errorf("Expected empty body, got %v", body)
		}
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		service, _, _ := newRoadmapServiceForTest(t)

		if _, err := service.Create(ctx, frontendCreateRequest(), "admin-1"); err != nil {
			t.Fatalf("First create failed: %v", err)
		}
		_, err := service.Create(ctx, frontendCreateRequest(), "admin-2")
		if !errors.Is(err, ErrRoadmapExists) {
			t.Errorf("Expected ErrRoadmapExists, got %v", err)
		}
	})
}

func TestRoadmapService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("admin deletes the document", func(t *testing.T) {
		service, repo, _ := newRoadmapServiceForTest(t)
		repo.user.setUser(&models.User{ID: "admin-1", Role: models.RoleAdmin})
		if _, err := service.Create(ctx, frontendCreateRequest(), "admin-1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := service.Delete(ctx, "Frontend Developer", "admin-1"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, ok := repo.roadmap.roadmaps["Frontend Developer"]; ok {
			t.Error("Roadmap still stored after delete")
		}
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		service, repo, _ := newRoadmapServiceForTest(t)
		repo.user.setUser(&models.User{ID: "teacher-1", Role: models.RoleTeacher})
		if _, err := service.Create(ctx, frontendCreateRequest(), "admin-1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		err := service.Delete(ctx, "Frontend Developer", "teacher-1")
		if !IsPermissionError(err) {
			t.Fatalf("Expected PermissionError, got %v", err)
		}
		if _, ok := repo.roadmap.roadmaps["Frontend Developer"]; !ok {
			t.Error("Roadmap deleted despite refused role")
		}
	})

	t.Run("caller missing from the user store", func(t *testing.T) {
		service, _, _ := newRoadmapServiceForTest(t)

		if err := service.Delete(ctx, "Frontend Developer", "ghost"); !errors.Is(err, ErrIdentityNotFound) {
			t.Errorf("Expected ErrIdentityNotFound, got %v", err)
		}
	})
}

func TestRoadmapService_PatchSection(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces named topics wholesale and keeps the rest", func(t *testing.T) {
		service, repo, publisher := newRoadmapServiceForTest(t)
		if _, err := service.Create(ctx, frontendCreateRequest(), "admin-1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		publisher.ClearEvents()

		resp, err := service.PatchSection(ctx, "Frontend Developer", "introduction", &PatchSectionRequest{
			Topics: map[string]models.TopicDetail{
				"html": {Description: "Semantic markup", Status: "done", Skill: "HTML"},
				"git":  {Description: "Version control basics", Status: "pending", Skill: "Git"},
			},
		}, "admin-1")
		if err != nil {
			t.Fatalf("PatchSection failed: %v", err)
		}
		if resp.Section != "introduction" || len(resp.Topics) != 2 {
			t.Errorf("Unexpected response: %+v", resp)
		}

		stored, _ := repo.roadmap.GetByName(ctx, "Frontend Developer")
		section := stored.Body.Data()["introduction"]
		if len(section) != 3 {
			t.Fatalf("Expected 3 topics after patch, got %d", len(section))
		}
		// Patched topic is replaced wholesale, so its resources are gone
		html := section["html"]
		if html.Status != "done" || html.Description != "Semantic markup" || len(html.Resources) != 0 {
			t.Errorf("Topic not replaced wholesale: %+v", html)
		}
		if section["css"].Description != "Styling web pages" {
			t.Error("Untouched topic changed")
		}
		if _, ok := stored.Body.Data()["frameworks"]; !ok {
			t.Error("Other sections must survive a section patch")
		}
		if stored.Version != 2 {
			t.Errorf("Expected version 2, got %d", stored.Version)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.RoadmapUpdated {
			t.Errorf("Expected one %s event, got %v", events.RoadmapUpdated, published)
		}
	})

	t.Run("unknown section is never created implicitly", func(t *testing.T) {
		service, repo, _ := newRoadmapServiceForTest(t)
		if _, err := service.Create(ctx, frontendCreateRequest(), "admin-1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		_, err := service.PatchSection(ctx, "Frontend Developer", "backend", &PatchSectionRequest{
			Topics: map[string]models.TopicDetail{"go": {Description: "Go basics"}},
		}, "admin-1")
		if !errors.Is(err, ErrSectionNotFound) {
			t.Fatalf("Expected ErrSectionNotFound, got %v", err)
		}

		stored, _ := repo.roadmap.GetByName(ctx, "Frontend Developer")
		if _, ok := stored.Body.Data()["backend"]; ok {
			t.Error("Section must not be created by a failed patch")
		}
	})

	t.Run("unknown roadmap", func(t *testing.T) {
		service, _, _ := newRoadmapServiceForTest(t)

		_, err := service.PatchSection(ctx, "NOPE", "introduction", &PatchSectionRequest{
			Topics: map[string]models.TopicDetail{"html": {}},
		}, "admin-1")
		if !errors.Is(err, ErrRoadmapNotFound) {
			t.Errorf("Expected ErrRoadmapNotFound, got %v", err)
		}
	})

	t.Run("retries through a version conflict", func(t *testing.T) {
		service, repo, _ := newRoadmapServiceForTest(t)
		if _, err := service.Create(ctx, frontendCreateRequest(), "admin-1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		repo.roadmap.injectConflicts = 1

		_, err := service.PatchSection(ctx, "Frontend Developer", "frameworks", &PatchSectionRequest{
			Topics: map[string]models.TopicDetail{"vue": {Description: "Progressive framework"}},
		}, "admin-1")
		if err != nil {
			t.Fatalf("PatchSection should retry past one conflict: %v", err)
		}

		stored, _ := repo.roadmap.GetByName(ctx, "Frontend Developer")
		if _, ok := stored.Body.Data()["frameworks"]["vue"]; !ok {
			t.Error("Patch lost after retry")
		}
	})
}

func TestRoadmapService_DeleteSection(t *testing.T) {
	ctx := context.Background()

	t.Run("removes section and all topics under it", func(t *testing.T) {
		service, repo, _ := newRoadmapServiceForTest(t)
		if _, err := service.Create(ctx, frontendCreateRequest(), "admin-1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		resp, err := service.DeleteSection(ctx, "Frontend Developer", "introduction", "admin-1")
		if err != nil {
			t.Fatalf("DeleteSection failed: %v", err)
		}
		if resp.Section != "introduction" {
			t.Errorf("Unexpected response section: %s", resp.Section)
		}

		stored, _ := repo.roadmap.GetByName(ctx, "Frontend Developer")
		body := stored.Body.Data()
		if _, ok := body["introduction"]; ok {
			t.Error("Deleted section still present")
		}
		if len(body) != 1 {
			t.Errorf("Expected 1 remaining section, got %d", len(body))
		}
	})

	t.Run("deleting the last section leaves a valid empty body", func(t *testing.T) {
		service, repo, _ := newRoadmapServiceForTest(t)
		if _, err := service.Create(ctx, frontendCreateRequest(), "admin-1"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if _, err := service.DeleteSection(ctx, "Frontend Developer", "introduction", "admin-1"); err != nil {
			t.Fatalf("First delete failed: %v", err)
		}
		if _, err := service.DeleteSection(ctx, "Frontend Developer", "frameworks", "admin-1"); err != nil {
			t.Fatalf("Second delete failed: %v", err)
		}

		stored, _ := repo.roadmap.GetByName(ctx, "Frontend Developer")
		if body := stored.Body.Data(); len(body) != 0 {
			t.Errorf("Expected empty body, got %v", body)
		}

		// The document still exists and repeated deletes now miss
		_, err := service.DeleteSection(ctx, "Frontend Developer", "introduction", "admin-1")
		if !errors.Is(err, ErrSectionNotFound) {
			t.Errorf("Expected ErrSectionNotFound on re-delete, got %v", err)
		}
	})
}
