package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"traffic-monitor-go/internal/pointcfg"
	"traffic-monitor-go/internal/service"
)

// AnalysisHandler обрабатывает HTTP запросы анализа трафика
type AnalysisHandler struct {
	analyzerService *service.AnalyzerService
	runService      *service.RunService
	logger          *logrus.Logger
}

// NewAnalysisHandler создает новый экземпляр AnalysisHandler
func NewAnalysisHandler(analyzerService *service.AnalyzerService, runService *service.RunService, logger *logrus.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analyzerService: analyzerService,
		runService:      runService,
		logger:          logger,
	}
}

// RegisterRoutes регистрирует маршруты API
func (h *AnalysisHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/analyze", h.Analyze)
		api.GET("/analyze/csv", h.AnalyzeCSV)
		api.GET("/runs", h.ListRuns)
		api.GET("/runs/:id", h.GetRun)
		api.DELETE("/runs/:id", h.DeleteRun)
		api.GET("/streets/runs", h.GetRunsByStreet)
		api.GET("/config/locations", h.ListLocations)
		api.GET("/config/locations/:location/streets", h.ListStreets)
		api.GET("/health", h.CheckHealth)
	}
}

// analyzeRequest тело запроса на анализ
type analyzeRequest struct {
	Location  string `json:"location"`
	Street    string `json:"street"`
	PointList string `json:"point_list"`
	Persist   bool   `json:"persist"`
}

// Analyze обрабатывает запрос на анализ трафика.
// Без location и street анализируется вся конфигурация.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	h.logger.Info("Получен запрос на анализ трафика")

	// Пустое тело означает анализ всей конфигурации
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Errorf("Ошибка парсинга тела запроса: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный формат тела запроса"})
		return
	}

	if (req.Location == "") != (req.Street == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Параметры location и street задаются вместе либо опускаются оба",
		})
		return
	}

	result, err := h.runAnalysis(req.Location, req.Street, req.PointList)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}

	response := service.AnalyzeResponse{
		Status:     "success",
		Message:    "Анализ трафика успешно завершен",
		Location:   result.Location,
		Street:     result.Street,
		PointList:  result.PointList,
		MaxPoints:  result.Table.MaxPoints,
		TotalShots: len(result.Table.Rows),
		Skipped:    result.Skipped,
		Summary:    result.Summary,
		Rows:       result.Table.Rows,
		DurationMS: result.Duration.Milliseconds(),
	}

	if req.Persist {
		runID, err := h.runService.SaveRun(result, h.analyzerService.ShotsDir())
		if err != nil {
			h.logger.Errorf("Ошибка сохранения запуска: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка сохранения результата анализа"})
			return
		}
		response.RunID = runID
	}

	h.logger.Info("Анализ трафика завершен успешно")
	c.JSON(http.StatusOK, response)
}

// AnalyzeCSV выполняет анализ и отдает таблицу в широком CSV формате
func (h *AnalysisHandler) AnalyzeCSV(c *gin.Context) {
	h.logger.Info("Получен запрос на выгрузку CSV")

	location := c.Query("location")
	street := c.Query("street")
	pointList := c.Query("point_list")

	if (location == "") != (street == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Параметры location и street задаются вместе либо опускаются оба",
		})
		return
	}

	result, err := h.runAnalysis(location, street, pointList)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}

	filename := fmt.Sprintf("traffic_%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := result.Table.WriteCSV(c.Writer); err != nil {
		h.logger.Errorf("Ошибка записи CSV: %v", err)
	}
}

// runAnalysis запускает пайплайн для улицы либо для всей конфигурации
func (h *AnalysisHandler) runAnalysis(location, street, pointList string) (*service.AnalysisResult, error) {
	if location == "" {
		return h.analyzerService.AnalyzeAll()
	}
	return h.analyzerService.AnalyzeStreet(location, street, pointList)
}

// respondAnalysisError преобразует ошибку пайплайна в HTTP ответ.
// Ошибки конфигурации указывают на дефект настройки и возвращаются как 400.
func (h *AnalysisHandler) respondAnalysisError(c *gin.Context, err error) {
	h.logger.Errorf("Ошибка анализа: %v", err)

	var configErr *pointcfg.ConfigError
	if errors.As(err, &configErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": configErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка анализа трафика"})
}

// ListRuns возвращает список запусков анализа с пагинацией
func (h *AnalysisHandler) ListRuns(c *gin.Context) {
	h.logger.Info("Получен запрос на получение списка запусков")

	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		size = 10
	}

	runs, total, err := h.runService.ListRuns(page, size)
	if err != nil {
		h.logger.Errorf("Ошибка получения списка запусков: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения списка запусков"})
		return
	}

	response := service.ListRunsResponse{
		Runs:  runs,
		Total: total,
		Page:  page,
		Size:  size,
	}

	h.logger.Infof("Возвращено %d запусков из %d", len(runs), total)
	c.JSON(http.StatusOK, response)
}

// GetRun возвращает запуск анализа по ID вместе с измерениями
func (h *AnalysisHandler) GetRun(c *gin.Context) {
	runID := c.Param("id")
	h.logger.Infof("Получен запрос на получение запуска с ID: %s", runID)

	run, err := h.runService.GetRunByID(runID)
	if err != nil {
		h.logger.Errorf("Ошибка получения запуска: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Запуск не найден"})
		return
	}

	h.logger.Info("Запуск найден и возвращен")
	c.JSON(http.StatusOK, run)
}

// DeleteRun удаляет запуск анализа по ID
func (h *AnalysisHandler) DeleteRun(c *gin.Context) {
	runID := c.Param("id")
	h.logger.Infof("Получен запрос на удаление запуска с ID: %s", runID)

	if err := h.runService.DeleteRun(runID); err != nil {
		h.logger.Errorf("Ошибка удаления запуска: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка удаления запуска"})
		return
	}

	h.logger.Info("Запуск успешно удален")
	c.JSON(http.StatusOK, gin.H{"message": "Запуск успешно удален"})
}

// GetRunsByStreet возвращает запуски анализа для конкретной улицы
func (h *AnalysisHandler) GetRunsByStreet(c *gin.Context) {
	location := c.Query("location")
	street := c.Query("street")

	if location == "" || street == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Отсутствуют обязательные параметры: location, street",
		})
		return
	}

	runs, err := h.runService.GetRunsByStreet(location, street)
	if err != nil {
		h.logger.Errorf("Ошибка получения запусков по улице: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка получения запусков"})
		return
	}

	h.logger.Infof("Найдено %d запусков для улицы %s/%s", len(runs), location, street)
	c.JSON(http.StatusOK, gin.H{"runs": runs, "total": len(runs)})
}

// ListLocations возвращает список локаций из конфигурации
func (h *AnalysisHandler) ListLocations(c *gin.Context) {
	locations := h.analyzerService.Config().Locations()
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// ListStreets возвращает список улиц локации
func (h *AnalysisHandler) ListStreets(c *gin.Context) {
	location := c.Param("location")

	streets, err := h.analyzerService.Config().Streets(location)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Локация не найдена"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location, "streets": streets})
}

// CheckHealth проверяет состояние сервиса
func (h *AnalysisHandler) CheckHealth(c *gin.Context) {
	h.logger.Debug("Получен запрос проверки здоровья")

	if err := h.analyzerService.CheckHealth(); err != nil {
		h.logger.Errorf("Сервис не готов: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, service.HealthResponse{
		Status:    "healthy",
		ShotsDir:  h.analyzerService.ShotsDir(),
		Locations: len(h.analyzerService.Config()),
		Version:   "1.0.0",
	})
}
