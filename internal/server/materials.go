package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/piwi3910/matcalc/internal/model"
	"github.com/piwi3910/matcalc/internal/project"
	"go.uber.org/zap"
)

func (s *Server) listMaterials(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.Load())
}

func (s *Server) getMaterial(c *gin.Context) {
	key := c.Param("key")
	mat, ok := s.catalog.Load().Lookup(key)
	if !ok {
		s.respondError(c, fmt.Errorf("material %q: %w", key, project.ErrNotFound))
		return
	}
	c.JSON(http.StatusOK, mat)
}

// putMaterial creates or replaces a material. The key in the path wins
// over any key in the body. The new catalog is persisted before it becomes
// visible to other requests.
func (s *Server) putMaterial(c *gin.Context) {
	var mat model.MaterialDefaults
	if err := bindJSON(c, &mat); err != nil {
		s.respondError(c, err)
		return
	}
	mat.Key = c.Param("key")
	if err := mat.Validate(); err != nil {
		s.respondError(c, err)
		return
	}

	_, err := s.catalog.Update(func(cat model.Catalog) (model.Catalog, error) {
		next := cat.Clone()
		next.Upsert(mat)
		if s.catalogPath != "" {
			if err := project.SaveCatalog(s.catalogPath, next); err != nil {
				return cat, fmt.Errorf("failed to save catalog: %w", err)
			}
		}
		return next, nil
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.logger.Info("Material updated", zap.String("key", mat.Key))
	c.JSON(http.StatusOK, mat)
}

func (s *Server) getDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, s.defaults.Load())
}

// putDefaults replaces the user defaults. Keys missing from the body keep
// their current values.
func (s *Server) putDefaults(c *gin.Context) {
	raw, err := readObject(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	next, err := s.defaults.Update(func(cur model.DefaultsConfig) (model.DefaultsConfig, error) {
		next := cur
		if err := decodeObject(raw, &next); err != nil {
			return cur, err
		}
		if next.HeadCut < 0 || next.TailCut < 0 {
			return cur, model.InvalidInput("headCut", "head and tail cut must not be negative")
		}
		if next.RecoveryRatio < 0 {
			return cur, model.InvalidInput("recoveryRatio", "recovery ratio must not be negative")
		}
		if s.defaultsPath != "" {
			if err := project.SaveDefaults(s.defaultsPath, next); err != nil {
				return cur, fmt.Errorf("failed to save defaults: %w", err)
			}
		}
		return next, nil
	})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, next)
}
