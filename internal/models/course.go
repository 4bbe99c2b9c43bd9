package models

import "time"

// Course представляет курс каталога.
type Course struct {
	UID          string    // Уникальный идентификатор курса
	Topic        string    // Название курса
	Description  string    // Описание
	Category     string    // Слаг категории: нижний регистр, пробелы заменены дефисами
	Price        int       // Цена курса
	Discount     int       // Скидка в процентах
	Rating       float64   // Средняя оценка, округлена до одного знака
	Level        string    // Уровень сложности
	Language     string    // Язык курса
	CreatedBy    string    // Имя автора
	CreatorEmail string    // Почта автора
	Lectures     []Lecture // Лекции курса
	CreatedAt    time.Time
}

// Lecture — лекция внутри курса. Видео хранится во внешнем сервисе,
// здесь только ссылка.
type Lecture struct {
	ID          int    // Идентификатор лекции
	Title       string // Название лекции
	Description string // Описание
	VideoURL    string // Ссылка на загруженное видео
	YoutubeLink string // Альтернативная ссылка на YouTube
	Position    int    // Порядковый номер в курсе
}

// Rating — оценка курса пользователем, не более одной на пользователя.
type Rating struct {
	CourseUID string
	UserUID   string
	Value     int
}
