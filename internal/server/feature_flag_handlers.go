package server

import "github.com/gofiber/fiber/v2"

// GetFeatureFlags reports which optional features are on for the caller.
// @Summary Feature flags for the current caller
// @Tags meta
// @Produce json
// @Success 200 {object} object{flags=[]string,evaluated=map[string]bool}
// @Router /feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"flags":     []string{},
			"evaluated": map[string]bool{},
		})
	}
	return c.JSON(fiber.Map{
		"flags":     s.featureFlags.Names(),
		"evaluated": s.featureFlags.Snapshot(currentUserID(c)),
	})
}
