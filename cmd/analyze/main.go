package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"traffic-monitor-go/internal/pointcfg"
	"traffic-monitor-go/internal/service"
)

// Пакетный запуск пайплайна анализа без базы данных:
// скриншоты каталога превращаются в широкую CSV таблицу.
func main() {
	configPath := flag.String("config", "config.toml", "путь к TOML файлу точек измерения")
	shotsDir := flag.String("shots", "./shots", "каталог со скриншотами")
	location := flag.String("location", "", "локация (вместе с -street; пусто — вся конфигурация)")
	street := flag.String("street", "", "улица (вместе с -location)")
	list := flag.String("list", "", "имя именованного списка точек")
	output := flag.String("out", "", "файл для CSV результата (пусто — stdout)")
	logLevel := flag.String("log-level", "info", "уровень логирования")
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(level)
	}

	if (*location == "") != (*street == "") {
		logger.Fatal("Флаги -location и -street задаются вместе либо опускаются оба")
	}

	points, err := pointcfg.Load(*configPath)
	if err != nil {
		logger.Fatalf("Ошибка загрузки точек измерения: %v", err)
	}

	analyzer := service.NewAnalyzerService(points, *shotsDir, logger)

	var result *service.AnalysisResult
	if *location == "" {
		result, err = analyzer.AnalyzeAll()
	} else {
		result, err = analyzer.AnalyzeStreet(*location, *street, *list)
	}
	if err != nil {
		logger.Fatalf("Ошибка анализа: %v", err)
	}

	out := os.Stdout
	if *output != "" {
		out, err = os.Create(*output)
		if err != nil {
			logger.Fatalf("Ошибка создания файла результата: %v", err)
		}
		defer out.Close()
	}

	if err := result.Table.WriteCSV(out); err != nil {
		logger.Fatalf("Ошибка записи CSV: %v", err)
	}

	logger.Infof("Готово: %d строк, %d файлов отброшено, доля затора %.3f",
		len(result.Table.Rows), len(result.Skipped), result.Summary.CongestedShare)
}
