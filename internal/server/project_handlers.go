package server

import (
	"workstation/internal/models"
	"workstation/internal/service"

	"github.com/gofiber/fiber/v2"
)

type projectRequest struct {
	Title               string                   `json:"title"`
	Description         string                   `json:"description"`
	ShortDescription    string                   `json:"short_description"`
	ProjectType         models.ProjectType       `json:"project_type"`
	Stage               models.ProjectStage      `json:"stage"`
	Status              models.ProjectStatus     `json:"status"`
	CollaborationNeeded models.CollaborationType `json:"collaboration_needed"`
	CoverImage          string                   `json:"cover_image"`
	Tags                []string                 `json:"tags"`
}

type updateProjectRequest struct {
	Title               *string                   `json:"title"`
	Description         *string                   `json:"description"`
	ShortDescription    *string                   `json:"short_description"`
	ProjectType         *models.ProjectType       `json:"project_type"`
	Stage               *models.ProjectStage      `json:"stage"`
	Status              *models.ProjectStatus     `json:"status"`
	CollaborationNeeded *models.CollaborationType `json:"collaboration_needed"`
	CoverImage          *string                   `json:"cover_image"`
	Tags                *[]string                 `json:"tags"`
}

// ListProjects handles GET /api/projects
func (s *Server) ListProjects(c *fiber.Ctx) error {
	page := parsePagination(c, 20)
	projects, err := s.projectService.ListProjects(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(projects)
}

// ViewProject handles GET /api/projects/:slug. Every call counts a view;
// an optional Bearer token fills in the viewer's relationship flags.
func (s *Server) ViewProject(c *fiber.Ctx) error {
	detail, err := s.projectService.ViewProject(c.UserContext(), s.optionalUserID(c), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	project, err := s.projectService.CreateProject(c.UserContext(), currentUserID(c), service.ProjectInput{
		Title:               req.Title,
		Description:         req.Description,
		ShortDescription:    req.ShortDescription,
		ProjectType:         req.ProjectType,
		Stage:               req.Stage,
		Status:              req.Status,
		CollaborationNeeded: req.CollaborationNeeded,
		CoverImage:          req.CoverImage,
		Tags:                req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// UpdateProject handles PUT /api/projects/:id
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateProjectRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	project, err := s.projectService.UpdateProject(c.UserContext(), currentUserID(c), id, service.UpdateProjectInput{
		Title:               req.Title,
		Description:         req.Description,
		ShortDescription:    req.ShortDescription,
		ProjectType:         req.ProjectType,
		Stage:               req.Stage,
		Status:              req.Status,
		CollaborationNeeded: req.CollaborationNeeded,
		CoverImage:          req.CoverImage,
		Tags:                req.Tags,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

// PostProjectUpdate handles POST /api/projects/:id/updates
func (s *Server) PostProjectUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	update, err := s.projectService.PostUpdate(c.UserContext(), service.PostUpdateInput{
		ActorID:   currentUserID(c),
		ProjectID: id,
		Title:     req.Title,
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(update)
}

// ListProjectUpdates handles GET /api/projects/:id/updates
func (s *Server) ListProjectUpdates(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c, 10)
	updates, err := s.projectService.ListUpdates(c.UserContext(), id, page.Limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updates)
}

// ToggleSupport handles POST /api/projects/:id/support
func (s *Server) ToggleSupport(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := s.membershipService.ToggleSupport(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
