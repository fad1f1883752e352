package dto

// WorkMessage asks the external worker to transcode an uploaded object.
type WorkMessage struct {
	VideoID     string `json:"videoId"`
	InputBucket string `json:"inputBucket"`
	InputKey    string `json:"inputKey"`
}

// NotificationMessage tells the owner how processing ended.
type NotificationMessage struct {
	VideoID      string  `json:"videoId"`
	UserID       string  `json:"userId"`
	Status       string  `json:"status"`
	DownloadLink *string `json:"downloadLink"`
	Message      string  `json:"message"`
}
