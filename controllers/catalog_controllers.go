package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peelojuice/backend/models"
	"github.com/peelojuice/backend/utils"
)

type CatalogController struct {
	DB *gorm.DB
}

func NewCatalogController(db *gorm.DB) *CatalogController {
	return &CatalogController{DB: db}
}

func (cc *CatalogController) ListJuices(c *gin.Context) {
	var juices []models.Juice
	if err := cc.DB.Where("is_available = ?", true).Order("name").Find(&juices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of juices", juices)
}

func (cc *CatalogController) GetJuice(c *gin.Context) {
	var juice models.Juice
	if err := cc.DB.First(&juice, c.Param("juice_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("juice not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Juice detail", juice)
}

func (cc *CatalogController) ListBranches(c *gin.Context) {
	var branches []models.Branch
	if err := cc.DB.Order("id").Find(&branches).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of branches", branches)
}

type BranchRequest struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

func (cc *CatalogController) CreateBranch(c *gin.Context) {
	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	branch := models.Branch{
		Name:     req.Name,
		Address:  req.Address,
		IsActive: true,
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}
	if err := cc.DB.Create(&branch).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Branch created", branch)
}

func (cc *CatalogController) UpdateBranch(c *gin.Context) {
	var branch models.Branch
	if err := cc.DB.First(&branch, c.Param("branch_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("branch not found"))
		return
	}

	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	branch.Name = req.Name
	branch.Address = req.Address
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}
	if err := cc.DB.Save(&branch).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Branch updated", branch)
}
