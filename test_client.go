package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	// Проверяем health endpoint
	fmt.Println("Проверяем health endpoint...")
	resp, err := http.Get("http://localhost:8080/api/v1/health")
	if err != nil {
		fmt.Printf("Ошибка при обращении к health endpoint: %v\n", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Ошибка чтения ответа: %v\n", err)
		return
	}

	fmt.Printf("Health check ответ (статус %d):\n%s\n\n", resp.StatusCode, string(body))

	// Если заданы локация и улица, отправляем запрос на анализ
	if len(os.Args) > 2 {
		location := os.Args[1]
		street := os.Args[2]
		fmt.Printf("Отправляем улицу %s/%s на анализ...\n", location, street)

		err := testAnalyze(location, street)
		if err != nil {
			fmt.Printf("Ошибка при тестировании анализа: %v\n", err)
		}
	} else {
		fmt.Println("Для тестирования анализа запустите: go run test_client.go <локация> <улица>")
	}
}

func testAnalyze(location, street string) error {
	// Собираем JSON тело запроса
	payload, err := json.Marshal(map[string]any{
		"location": location,
		"street":   street,
		"persist":  false,
	})
	if err != nil {
		return fmt.Errorf("ошибка сборки тела запроса: %w", err)
	}

	// Отправляем запрос
	client := &http.Client{Timeout: 5 * time.Minute}
	req, err := http.NewRequest("POST", "http://localhost:8080/api/v1/analyze", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	fmt.Println("Отправляем запрос на анализ...")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки запроса: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	fmt.Printf("Ответ анализа (статус %d):\n%s\n", resp.StatusCode, string(respBody))
	return nil
}
