package v1

import (
	"net/http"

	"go-occupational-backend/internal/delivery/http/response"
	"go-occupational-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	locationUC domain.LocationUsecase
}

func NewLocationHandler(protected *gin.RouterGroup, locationUC domain.LocationUsecase) {
	handler := &LocationHandler{locationUC: locationUC}

	locations := protected.Group("/locations")
	{
		locations.GET("/countries", handler.Countries)
		locations.GET("/countries/:id/departments", handler.Departments)
		locations.GET("/departments/:id/cities", handler.Cities)
	}
}

// Countries godoc
// @Summary      List countries
// @Tags         locations
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Country}
// @Router       /locations/countries [get]
// @Security     BearerAuth
func (h *LocationHandler) Countries(c *gin.Context) {
	countries, err := h.locationUC.ListCountries(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Countries retrieved", countries)
}

// Departments godoc
// @Summary      List the departments of a country
// @Tags         locations
// @Produce      json
// @Param        id   path      int  true  "Country ID"
// @Success      200  {object}  response.Response{data=[]domain.Department}
// @Failure      400  {object}  response.Response
// @Router       /locations/countries/{id}/departments [get]
// @Security     BearerAuth
func (h *LocationHandler) Departments(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	departments, err := h.locationUC.ListDepartments(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Departments retrieved", departments)
}

// Cities godoc
// @Summary      List the cities of a department
// @Tags         locations
// @Produce      json
// @Param        id   path      int  true  "Department ID"
// @Success      200  {object}  response.Response{data=[]domain.City}
// @Failure      400  {object}  response.Response
// @Router       /locations/departments/{id}/cities [get]
// @Security     BearerAuth
func (h *LocationHandler) Cities(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	cities, err := h.locationUC.ListCities(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Cities retrieved", cities)
}
