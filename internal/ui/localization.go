package ui

import (
	"os"
	"strings"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle         = "app_title"
	KeyDownloaderPath   = "downloader_path"
	KeyConverterPath    = "converter_path"
	KeySaveDirectory    = "save_directory"
	KeyURL              = "url"
	KeyEnterURL         = "enter_url"
	KeyBrowse           = "browse"
	KeyDownload         = "download"
	KeyCancel           = "cancel"
	KeyUpdateDownloader = "update_downloader"
	KeyUpdateConverter  = "update_converter"
	KeyOpenFolder       = "open_folder"
	KeySettings         = "settings"
	KeyLanguage         = "language"
	KeyFilenameTemplate = "filename_template"
	KeySave             = "save"
	KeySettingsSaved    = "settings_saved"
	KeyLog              = "log"
	KeyStatusIdle       = "status_idle"
	KeyStatusRunning    = "status_running"
	KeyStatusStopping   = "status_stopping"

	KeyMissingFields       = "missing_fields"
	KeyDownloaderRequired  = "downloader_required"
	KeyConverterTarget     = "converter_target"
	KeyConverterManual     = "converter_manual"
	KeyErrorOpeningFolder  = "error_opening_folder"
	KeyDownloadFinished    = "download_finished"
	KeyDownloaderUpdated   = "downloader_updated"
	KeyConverterUpdated    = "converter_updated"
	KeyDownloadCancelled   = "download_cancelled"
	KeyTaskAlreadyRunning  = "task_already_running"
	KeyConverterPathFilled = "converter_path_filled"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. "system" picks the language from LANG.
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" || lang == "" {
		lang = systemLanguage()
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// systemLanguage returns the two-letter code from LANG, e.g. "ru_RU.UTF-8" -> "ru"
func systemLanguage() string {
	for _, env := range []string{"LC_ALL", "LANG"} {
		value := os.Getenv(env)
		if len(value) >= 2 {
			return strings.ToLower(value[:2])
		}
	}
	return "en"
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:            "Media Downloader",
		KeyDownloaderPath:      "yt-dlp path",
		KeyConverterPath:       "ffmpeg path",
		KeySaveDirectory:       "Save directory",
		KeyURL:                 "URL",
		KeyEnterURL:            "Enter video or playlist URL",
		KeyBrowse:              "Browse",
		KeyDownload:            "Download",
		KeyCancel:              "Cancel",
		KeyUpdateDownloader:    "Update yt-dlp",
		KeyUpdateConverter:     "Update ffmpeg",
		KeyOpenFolder:          "Open folder",
		KeySettings:            "Settings",
		KeyLanguage:            "Language",
		KeyFilenameTemplate:    "Filename Template",
		KeySave:                "Save",
		KeySettingsSaved:       "Settings saved successfully!",
		KeyLog:                 "Log",
		KeyStatusIdle:          "Idle",
		KeyStatusRunning:       "Running",
		KeyStatusStopping:      "Stopping...",
		KeyMissingFields:       "Please fill in the yt-dlp path, the save directory and the URL.",
		KeyDownloaderRequired:  "Please set the yt-dlp path first.",
		KeyConverterTarget:     "Choose a folder for ffmpeg",
		KeyConverterManual:     "Automatic ffmpeg update is only available on Windows. Please update ffmpeg with your package manager.",
		KeyErrorOpeningFolder:  "Error opening folder",
		KeyDownloadFinished:    "Download finished.",
		KeyDownloaderUpdated:   "yt-dlp update finished.",
		KeyConverterUpdated:    "ffmpeg updated.",
		KeyDownloadCancelled:   "Download cancelled.",
		KeyTaskAlreadyRunning:  "Another task is already running.",
		KeyConverterPathFilled: "ffmpeg path set to",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:            "Медиа Загрузчик",
		KeyDownloaderPath:      "Путь к yt-dlp",
		KeyConverterPath:       "Путь к ffmpeg",
		KeySaveDirectory:       "Папка сохранения",
		KeyURL:                 "URL",
		KeyEnterURL:            "Введите URL видео или плейлиста",
		KeyBrowse:              "Обзор",
		KeyDownload:            "Скачать",
		KeyCancel:              "Отмена",
		KeyUpdateDownloader:    "Обновить yt-dlp",
		KeyUpdateConverter:     "Обновить ffmpeg",
		KeyOpenFolder:          "Открыть папку",
		KeySettings:            "Настройки",
		KeyLanguage:            "Язык",
		KeyFilenameTemplate:    "Шаблон имени файла",
		KeySave:                "Сохранить",
		KeySettingsSaved:       "Настройки успешно сохранены!",
		KeyLog:                 "Журнал",
		KeyStatusIdle:          "Ожидание",
		KeyStatusRunning:       "Выполняется",
		KeyStatusStopping:      "Остановка...",
		KeyMissingFields:       "Заполните путь к yt-dlp, папку сохранения и URL.",
		KeyDownloaderRequired:  "Сначала укажите путь к yt-dlp.",
		KeyConverterTarget:     "Выберите папку для ffmpeg",
		KeyConverterManual:     "Автоматическое обновление ffmpeg доступно только в Windows. Обновите ffmpeg через менеджер пакетов.",
		KeyErrorOpeningFolder:  "Ошибка открытия папки",
		KeyDownloadFinished:    "Загрузка завершена.",
		KeyDownloaderUpdated:   "Обновление yt-dlp завершено.",
		KeyConverterUpdated:    "ffmpeg обновлён.",
		KeyDownloadCancelled:   "Загрузка отменена.",
		KeyTaskAlreadyRunning:  "Другая задача уже выполняется.",
		KeyConverterPathFilled: "Путь к ffmpeg:",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:            "Media Downloader",
		KeyDownloaderPath:      "Caminho do yt-dlp",
		KeyConverterPath:       "Caminho do ffmpeg",
		KeySaveDirectory:       "Diretório de destino",
		KeyURL:                 "URL",
		KeyEnterURL:            "Digite a URL do vídeo ou playlist",
		KeyBrowse:              "Navegar",
		KeyDownload:            "Baixar",
		KeyCancel:              "Cancelar",
		KeyUpdateDownloader:    "Atualizar yt-dlp",
		KeyUpdateConverter:     "Atualizar ffmpeg",
		KeyOpenFolder:          "Abrir pasta",
		KeySettings:            "Configurações",
		KeyLanguage:            "Idioma",
		KeyFilenameTemplate:    "Modelo de Nome de Arquivo",
		KeySave:                "Salvar",
		KeySettingsSaved:       "Configurações salvas com sucesso!",
		KeyLog:                 "Registro",
		KeyStatusIdle:          "Ocioso",
		KeyStatusRunning:       "Executando",
		KeyStatusStopping:      "Parando...",
		KeyMissingFields:       "Preencha o caminho do yt-dlp, o diretório de destino e a URL.",
		KeyDownloaderRequired:  "Defina primeiro o caminho do yt-dlp.",
		KeyConverterTarget:     "Escolha uma pasta para o ffmpeg",
		KeyConverterManual:     "A atualização automática do ffmpeg só está disponível no Windows. Atualize o ffmpeg pelo gerenciador de pacotes.",
		KeyErrorOpeningFolder:  "Erro ao abrir pasta",
		KeyDownloadFinished:    "Download concluído.",
		KeyDownloaderUpdated:   "Atualização do yt-dlp concluída.",
		KeyConverterUpdated:    "ffmpeg atualizado.",
		KeyDownloadCancelled:   "Download cancelado.",
		KeyTaskAlreadyRunning:  "Outra tarefa já está em execução.",
		KeyConverterPathFilled: "Caminho do ffmpeg:",
	}
}
