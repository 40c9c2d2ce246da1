package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"loadrun_srv/internal/domain/daterange"
	"loadrun_srv/internal/domain/template"
	"loadrun_srv/internal/models"
	"loadrun_srv/internal/runner"
	"loadrun_srv/internal/storage"
	"loadrun_srv/internal/warehouse"
)

const (
	// Таймауты
	defaultRunTimeout = 24 * time.Hour

	// Лимиты
	taskQueueSize = 100
)

// LoadRunService интерфейс для работы с загрузками
type LoadRunService interface {
	CreateRun(ctx context.Context, run *models.LoadRun) error
	GetRun(ctx context.Context, id uint) (*models.LoadRun, error)
	ListRuns(ctx context.Context, params ListRunParams) (*RunList, error)
	CancelRun(ctx context.Context, id uint) error
	DeleteRun(ctx context.Context, id uint) error
	GetRunReport(ctx context.Context, id uint) (io.ReadCloser, string, error)
}

// LoadRunRepository интерфейс для работы с историей загрузок в БД
type LoadRunRepository interface {
	Create(ctx context.Context, run *models.LoadRun) error
	GetByID(ctx context.Context, id uint) (*models.LoadRun, error)
	List(ctx context.Context, params ListRunParams) ([]models.LoadRun, int64, error)
	Delete(ctx context.Context, id uint) error
	UpdateProgress(ctx context.Context, id uint, datesDone int) error
	UpdateStatus(ctx context.Context, id uint, status models.LoadRunStatus, upd StatusUpdate) error
}

// StatusUpdate дополнительные поля, меняющиеся вместе со статусом
type StatusUpdate struct {
	FileKey      string
	TotalSeconds float64
	Error        string
}

// RunReportGenerator интерфейс для генерации отчёта о загрузке
type RunReportGenerator interface {
	Generate(ctx context.Context, run *models.LoadRun, result runner.Result) (io.Reader, error)
	FileExtension() string
	MimeType() string
}

// RunFileStorage интерфейс для работы с файлами отчётов о загрузках
type RunFileStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	GenerateKey(run *models.LoadRun) string
}

// BackgroundProcessor интерфейс для фоновой обработки
type BackgroundProcessor interface {
	SubmitTask(ctx context.Context, task Task) error
	CancelTask(taskID string) error
}

// Task представляет фоновую задачу
type Task struct {
	ID      string
	RunID   uint
	Timeout time.Duration
}

// ListRunParams параметры для получения списка загрузок
type ListRunParams struct {
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Status   *models.LoadRunStatus `json:"status,omitempty"`
	Search   string                `json:"search,omitempty"`
	SortBy   string                `json:"sort_by,omitempty"`
	SortDesc bool                  `json:"sort_desc,omitempty"`
}

// RunList результат получения списка загрузок с пагинацией
type RunList struct {
	Runs       []models.LoadRun `json:"runs"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// LoadRunServiceImpl реализация сервиса загрузок
type LoadRunServiceImpl struct {
	repository  LoadRunRepository
	generator   RunReportGenerator
	fileStorage RunFileStorage
	processor   BackgroundProcessor
	logger      *logrus.Logger
}

// NewLoadRunService создает новый сервис загрузок
func NewLoadRunService(
	repository LoadRunRepository,
	generator RunReportGenerator,
	fileStorage RunFileStorage,
	processor BackgroundProcessor,
	logger *logrus.Logger,
) LoadRunService {
	return &LoadRunServiceImpl{
		repository:  repository,
		generator:   generator,
		fileStorage: fileStorage,
		processor:   processor,
		logger:      logger,
	}
}

// CreateRun создает новую загрузку и запускает её в фоне
func (s *LoadRunServiceImpl) CreateRun(ctx context.Context, run *models.LoadRun) error {
	logger := s.logger.WithFields(logrus.Fields{
		"title":      run.Title,
		"created_by": run.CreatedBy,
	})

	logger.Info("Создание новой загрузки")

	// Валидация полей записи
	if err := run.Validate(); err != nil {
		logger.WithError(err).Error("Ошибка валидации загрузки")
		return fmt.Errorf("ошибка валидации загрузки: %w", err)
	}

	// Валидация диапазона дат и шаблона запроса
	rng, err := daterange.ParseRange(run.StartDate, run.EndDate)
	if err != nil {
		logger.WithError(err).Error("Неверный диапазон дат")
		return fmt.Errorf("неверный диапазон дат: %w", err)
	}
	if _, err := template.New(run.Query); err != nil {
		logger.WithError(err).Error("Неверный шаблон запроса")
		return fmt.Errorf("неверный шаблон запроса: %w", err)
	}

	run.Status = models.StatusPending
	run.DatesTotal = rng.Days()
	run.DatesDone = 0

	// Сохранение в БД
	if err := s.repository.Create(ctx, run); err != nil {
		logger.WithError(err).Error("Ошибка сохранения загрузки в БД")
		return fmt.Errorf("ошибка создания загрузки: %w", err)
	}

	logger.WithField("run_id", run.ID).Info("Загрузка создана, запуск выполнения")

	// Запуск фонового выполнения
	task := Task{
		ID:      fmt.Sprintf("run_%d", run.ID),
		RunID:   run.ID,
		Timeout: defaultRunTimeout,
	}

	if err := s.processor.SubmitTask(ctx, task); err != nil {
		logger.WithError(err).Error("Ошибка запуска фонового выполнения")
		s.repository.UpdateStatus(ctx, run.ID, models.StatusFailed, StatusUpdate{Error: err.Error()})
		return fmt.Errorf("ошибка запуска загрузки: %w", err)
	}

	return nil
}

// GetRun получает загрузку по ID
func (s *LoadRunServiceImpl) GetRun(ctx context.Context, id uint) (*models.LoadRun, error) {
	run, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("загрузка с ID %d не найдена", id)
		}
		s.logger.WithError(err).WithField("run_id", id).Error("Ошибка получения загрузки")
		return nil, fmt.Errorf("ошибка получения загрузки: %w", err)
	}

	return run, nil
}

// ListRuns получает список загрузок с пагинацией
func (s *LoadRunServiceImpl) ListRuns(ctx context.Context, params ListRunParams) (*RunList, error) {
	// Валидация параметров пагинации
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PageSize <= 0 {
		params.PageSize = 20
	}
	if params.PageSize > 100 {
		params.PageSize = 100
	}

	runs, total, err := s.repository.List(ctx, params)
	if err != nil {
		s.logger.WithError(err).Error("Ошибка получения списка загрузок")
		return nil, fmt.Errorf("ошибка получения списка загрузок: %w", err)
	}

	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))

	return &RunList{
		Runs:       runs,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// CancelRun отменяет выполнение загрузки
func (s *LoadRunServiceImpl) CancelRun(ctx context.Context, id uint) error {
	logger := s.logger.WithField("run_id", id)

	run, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("загрузка с ID %d не найдена", id)
		}
		return fmt.Errorf("ошибка получения загрузки: %w", err)
	}

	// Проверяем, что загрузку можно отменить
	if !run.Status.CanTransitionTo(models.StatusCanceled) {
		return fmt.Errorf("загрузку в статусе %s нельзя отменить", run.Status)
	}

	// Отменяем задачу в процессоре; отмена срабатывает между датами
	taskID := fmt.Sprintf("run_%d", id)
	if err := s.processor.CancelTask(taskID); err != nil {
		logger.WithError(err).Warn("Задача не найдена в процессоре")
	}

	if err := s.repository.UpdateStatus(ctx, id, models.StatusCanceled, StatusUpdate{}); err != nil {
		return fmt.Errorf("ошибка обновления статуса загрузки: %w", err)
	}

	logger.Info("Загрузка отменена")
	return nil
}

// DeleteRun удаляет загрузку и её файл отчёта
func (s *LoadRunServiceImpl) DeleteRun(ctx context.Context, id uint) error {
	logger := s.logger.WithField("run_id", id)

	run, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("загрузка с ID %d не найдена", id)
		}
		return fmt.Errorf("ошибка получения загрузки: %w", err)
	}

	// Удаляем файл отчёта из хранилища, если он существует
	if run.HasFile() {
		if err := s.fileStorage.Delete(ctx, run.FileKey); err != nil {
			logger.WithError(err).WithField("file_key", run.FileKey).
				Error("Ошибка удаления файла отчёта")
			// Не прерываем удаление записи из-за ошибки удаления файла
		}
	}

	if err := s.repository.Delete(ctx, id); err != nil {
		logger.WithError(err).Error("Ошибка удаления загрузки из БД")
		return fmt.Errorf("ошибка удаления загрузки: %w", err)
	}

	logger.WithField("title", run.Title).Info("Загрузка удалена успешно")
	return nil
}

// GetRunReport возвращает файл отчёта о загрузке
func (s *LoadRunServiceImpl) GetRunReport(ctx context.Context, id uint) (io.ReadCloser, string, error) {
	run, err := s.repository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("загрузка с ID %d не найдена", id)
		}
		return nil, "", fmt.Errorf("ошибка получения загрузки: %w", err)
	}

	if !run.IsCompleted() {
		return nil, "", fmt.Errorf("загрузка еще не завершена")
	}

	if !run.HasFile() {
		return nil, "", fmt.Errorf("файл отчёта не найден")
	}

	reader, err := s.fileStorage.Get(ctx, run.FileKey)
	if err != nil {
		s.logger.WithError(err).WithField("file_key", run.FileKey).
			Error("Ошибка получения файла из хранилища")
		return nil, "", fmt.Errorf("ошибка получения файла: %w", err)
	}

	filename := fmt.Sprintf("%s.%s", run.Title, s.generator.FileExtension())
	return reader, filename, nil
}

// ExcelRunReportGenerator генератор отчётов о загрузках в формате Excel
type ExcelRunReportGenerator struct {
	logger *logrus.Logger
}

// NewExcelRunReportGenerator создает новый генератор отчётов
func NewExcelRunReportGenerator(logger *logrus.Logger) RunReportGenerator {
	return &ExcelRunReportGenerator{logger: logger}
}

// Generate генерирует книгу с одной строкой на каждую дату загрузки
func (g *ExcelRunReportGenerator) Generate(ctx context.Context, run *models.LoadRun, result runner.Result) (io.Reader, error) {
	logger := g.logger.WithFields(logrus.Fields{
		"run_id": run.ID,
		"title":  run.Title,
	})

	logger.Info("Генерация отчёта о загрузке")

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Load Run"
	f.SetSheetName("Sheet1", sheet)

	// Стиль для заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 12,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err != nil {
		logger.WithError(err).Warn("Ошибка создания стиля заголовка")
	}

	headers := []string{"Date", "Elapsed (s)"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		if headerStyle != 0 {
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
	}

	// Строка на каждую обработанную дату
	row := 2
	for _, step := range result.Steps {
		dateCell, _ := excelize.CoordinatesToCellName(1, row)
		elapsedCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheet, dateCell, step.Date)
		f.SetCellValue(sheet, elapsedCell, step.Elapsed.Seconds())
		row++
	}

	// Итоговый блок
	summary := [][]interface{}{
		{"", ""},
		{"Run ID", run.ID},
		{"Title", run.Title},
		{"Range", fmt.Sprintf("%s..%s", run.StartDate, run.EndDate)},
		{"Dates processed", len(result.Steps)},
		{"Total elapsed (s)", result.Total.Seconds()},
		{"Created by", run.CreatedBy},
	}
	for _, pair := range summary {
		keyCell, _ := excelize.CoordinatesToCellName(1, row)
		valCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheet, keyCell, pair[0])
		f.SetCellValue(sheet, valCell, pair[1])
		row++
	}

	f.SetColWidth(sheet, "A", "B", 24)

	var buffer bytes.Buffer
	if err := f.Write(&buffer); err != nil {
		logger.WithError(err).Error("Ошибка записи Excel файла")
		return nil, fmt.Errorf("ошибка генерации Excel файла: %w", err)
	}

	logger.Info("Отчёт о загрузке сгенерирован успешно")
	return &buffer, nil
}

// MimeType возвращает MIME тип для Excel файлов
func (g *ExcelRunReportGenerator) MimeType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileExtension возвращает расширение файла для Excel
func (g *ExcelRunReportGenerator) FileExtension() string {
	return "xlsx"
}

// RunFileStorageImpl реализация хранилища файлов отчётов
type RunFileStorageImpl struct {
	storage storage.Storage
	logger  *logrus.Logger
}

// NewRunFileStorage создает новое хранилище файлов отчётов
func NewRunFileStorage(storage storage.Storage, logger *logrus.Logger) RunFileStorage {
	return &RunFileStorageImpl{
		storage: storage,
		logger:  logger,
	}
}

// Save сохраняет файл в хранилище
func (s *RunFileStorageImpl) Save(ctx context.Context, key string, data io.Reader) error {
	return s.storage.Save(ctx, key, data)
}

// Get получает файл из хранилища
func (s *RunFileStorageImpl) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	return s.storage.Get(ctx, key)
}

// Delete удаляет файл из хранилища
func (s *RunFileStorageImpl) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}

// GenerateKey генерирует ключ для файла отчёта
func (s *RunFileStorageImpl) GenerateKey(run *models.LoadRun) string {
	return s.storage.JoinPath("runs",
		fmt.Sprintf("%d", run.ID),
		fmt.Sprintf("%s_%s.xlsx", run.StartDate, run.EndDate))
}

// GormLoadRunRepository реализация репозитория загрузок для GORM
type GormLoadRunRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewGormLoadRunRepository создает новый GORM репозиторий загрузок
func NewGormLoadRunRepository(db *gorm.DB, logger *logrus.Logger) LoadRunRepository {
	return &GormLoadRunRepository{
		db:     db,
		logger: logger,
	}
}

// Create создает новую запись загрузки в БД
func (r *GormLoadRunRepository) Create(ctx context.Context, run *models.LoadRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// GetByID получает загрузку по ID
func (r *GormLoadRunRepository) GetByID(ctx context.Context, id uint) (*models.LoadRun, error) {
	var run models.LoadRun
	err := r.db.WithContext(ctx).First(&run, id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List получает список загрузок с фильтрацией и пагинацией
func (r *GormLoadRunRepository) List(ctx context.Context, params ListRunParams) ([]models.LoadRun, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LoadRun{})

	// Фильтрация по статусу
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	// Поиск
	if params.Search != "" {
		searchPattern := "%" + params.Search + "%"
		query = query.Where("title LIKE ?", searchPattern)
	}

	// Подсчет общего количества
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Сортировка
	if params.SortBy != "" {
		order := params.SortBy
		if params.SortDesc {
			order += " DESC"
		}
		query = query.Order(order)
	} else {
		query = query.Order("created_at DESC")
	}

	// Пагинация
	offset := (params.Page - 1) * params.PageSize
	query = query.Offset(offset).Limit(params.PageSize)

	var runs []models.LoadRun
	err := query.Find(&runs).Error

	return runs, total, err
}

// Delete удаляет загрузку
func (r *GormLoadRunRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.LoadRun{}, id).Error
}

// UpdateProgress обновляет счётчик обработанных дат
func (r *GormLoadRunRepository) UpdateProgress(ctx context.Context, id uint, datesDone int) error {
	return r.db.WithContext(ctx).Model(&models.LoadRun{}).Where("id = ?", id).
		Update("dates_done", datesDone).Error
}

// UpdateStatus обновляет статус загрузки
func (r *GormLoadRunRepository) UpdateStatus(ctx context.Context, id uint, status models.LoadRunStatus, upd StatusUpdate) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}

	if upd.FileKey != "" {
		updates["file_key"] = upd.FileKey
	}
	if upd.TotalSeconds > 0 {
		updates["total_seconds"] = upd.TotalSeconds
	}
	if upd.Error != "" {
		updates["error"] = upd.Error
	}

	if status == models.StatusCompleted || status == models.StatusFailed || status == models.StatusCanceled {
		now := time.Now().UTC()
		updates["finished_at"] = &now
	}

	return r.db.WithContext(ctx).Model(&models.LoadRun{}).Where("id = ?", id).Updates(updates).Error
}

// NewLoadRunServiceFromDB создает полностью настроенный сервис загрузок
func NewLoadRunServiceFromDB(db *gorm.DB, store storage.Storage, sessions warehouse.SessionFactory, logger *logrus.Logger) LoadRunService {
	repository := NewGormLoadRunRepository(db, logger)
	generator := NewExcelRunReportGenerator(logger)
	fileStorage := NewRunFileStorage(store, logger)

	processor := NewRunProcessor(repository, generator, fileStorage, sessions, logger)
	go processor.Start()

	return NewLoadRunService(repository, generator, fileStorage, processor, logger)
}

// RunProcessor фоновый процессор, выполняющий загрузки по датам
type RunProcessor struct {
	repository    LoadRunRepository
	generator     RunReportGenerator
	fileStorage   RunFileStorage
	sessions      warehouse.SessionFactory
	logger        *logrus.Logger
	tasks         chan Task
	cancellations sync.Map // map[string]context.CancelFunc
}

// NewRunProcessor создает новый фоновый процессор загрузок
func NewRunProcessor(
	repository LoadRunRepository,
	generator RunReportGenerator,
	fileStorage RunFileStorage,
	sessions warehouse.SessionFactory,
	logger *logrus.Logger,
) *RunProcessor {
	return &RunProcessor{
		repository:  repository,
		generator:   generator,
		fileStorage: fileStorage,
		sessions:    sessions,
		logger:      logger,
		tasks:       make(chan Task, taskQueueSize),
	}
}

// SubmitTask отправляет задачу на выполнение
func (p *RunProcessor) SubmitTask(ctx context.Context, task Task) error {
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("очередь задач переполнена")
	}
}

// CancelTask отменяет задачу
func (p *RunProcessor) CancelTask(taskID string) error {
	if cancel, exists := p.cancellations.Load(taskID); exists {
		if cancelFunc, ok := cancel.(context.CancelFunc); ok {
			cancelFunc()
			return nil
		}
	}
	return fmt.Errorf("задача %s не найдена", taskID)
}

// Start запускает обработку фоновых задач
func (p *RunProcessor) Start() {
	for task := range p.tasks {
		go p.processTask(task)
	}
}

// processTask обрабатывает одну задачу загрузки
func (p *RunProcessor) processTask(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), task.Timeout)
	defer cancel()

	p.cancellations.Store(task.ID, cancel)
	defer p.cancellations.Delete(task.ID)

	p.processLoadRun(ctx, task.RunID)
}

// processLoadRun выполняет загрузку: даты по порядку, одна за другой
func (p *RunProcessor) processLoadRun(ctx context.Context, runID uint) {
	logger := p.logger.WithField("run_id", runID)

	run, err := p.repository.GetByID(ctx, runID)
	if err != nil {
		logger.WithError(err).Error("Ошибка получения загрузки для выполнения")
		return
	}

	// Запись уже могла быть отменена до старта
	if !run.Status.CanTransitionTo(models.StatusRunning) {
		logger.WithField("status", run.Status).Warn("Загрузка не в состоянии для запуска")
		return
	}

	if err := p.repository.UpdateStatus(ctx, runID, models.StatusRunning, StatusUpdate{}); err != nil {
		logger.WithError(err).Error("Ошибка обновления статуса на running")
		return
	}

	rng, err := daterange.ParseRange(run.StartDate, run.EndDate)
	if err != nil {
		p.fail(ctx, runID, err)
		return
	}
	tmpl, err := template.New(run.Query)
	if err != nil {
		p.fail(ctx, runID, err)
		return
	}

	r := runner.New(p.sessions, p.logger)
	progress := &repositoryProgress{repository: p.repository, runID: runID}

	result, err := r.Run(ctx, rng, tmpl, progress)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Загрузка отменена между датами")
			p.repository.UpdateStatus(context.Background(), runID, models.StatusCanceled, StatusUpdate{})
			return
		}
		p.fail(ctx, runID, err)
		return
	}

	// Генерируем и сохраняем отчёт о выполненной загрузке
	fileReader, err := p.generator.Generate(ctx, run, result)
	if err != nil {
		logger.WithError(err).Error("Ошибка генерации отчёта о загрузке")
		p.fail(ctx, runID, err)
		return
	}

	fileKey := p.fileStorage.GenerateKey(run)
	if err := p.fileStorage.Save(ctx, fileKey, fileReader); err != nil {
		logger.WithError(err).Error("Ошибка сохранения отчёта о загрузке")
		p.fail(ctx, runID, err)
		return
	}

	upd := StatusUpdate{FileKey: fileKey, TotalSeconds: result.Total.Seconds()}
	if err := p.repository.UpdateStatus(ctx, runID, models.StatusCompleted, upd); err != nil {
		logger.WithError(err).Error("Ошибка обновления статуса на completed")
		return
	}

	logger.WithFields(logrus.Fields{
		"dates":         len(result.Steps),
		"total_seconds": result.Total.Seconds(),
		"file_key":      fileKey,
	}).Info("Загрузка выполнена успешно")
}

func (p *RunProcessor) fail(ctx context.Context, runID uint, cause error) {
	if err := p.repository.UpdateStatus(ctx, runID, models.StatusFailed, StatusUpdate{Error: cause.Error()}); err != nil {
		p.logger.WithError(err).WithField("run_id", runID).Error("Ошибка обновления статуса на failed")
	}
}

// repositoryProgress пишет прогресс выполнения в БД
type repositoryProgress struct {
	repository LoadRunRepository
	runID      uint
	done       int
}

func (p *repositoryProgress) Step(date string, elapsed time.Duration) {
	p.done++
	// Потеря одного обновления прогресса не критична
	p.repository.UpdateProgress(context.Background(), p.runID, p.done)
}

func (p *repositoryProgress) Done(total time.Duration) {}
