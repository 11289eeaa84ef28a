package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const defaultURL = "http://localhost:8000"

func newUploadCmd() *cobra.Command {
	var (
		baseURL    string
		deviceID   string
		recordedAt string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an audio file to a running server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if recordedAt == "" {
				recordedAt = time.Now().Format(time.RFC3339Nano)
			}
			metadata, err := json.Marshal(map[string]string{
				"device_id":   deviceID,
				"recorded_at": recordedAt,
			})
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			body, contentType := streamMultipart(metadata, filepath.Base(args[0]), f)
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, strings.TrimRight(baseURL, "/")+"/upload", body)
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", contentType)
			return doAndPrint(cmd, &http.Client{Timeout: timeout}, req)
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", defaultURL, "Server base URL")
	cmd.Flags().StringVar(&deviceID, "device", "", "Device id")
	cmd.Flags().StringVar(&recordedAt, "recorded-at", "", "Recording start with UTC offset (defaults to now, local offset)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Request timeout")
	_ = cmd.MarkFlagRequired("device")
	return cmd
}

// streamMultipart encodes the metadata field and the file part through a pipe
// so the file is never held in memory.
func streamMultipart(metadata []byte, filename string, file io.Reader) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := func() error {
			if err := mw.WriteField("metadata", string(metadata)); err != nil {
				return err
			}
			part, err := mw.CreateFormFile("file", filename)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, file); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()
	return pr, mw.FormDataContentType()
}

func newHealthCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Print the health report of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimRight(baseURL, "/")+"/health", nil)
			if err != nil {
				return err
			}
			return doAndPrint(cmd, &http.Client{Timeout: 10 * time.Second}, req)
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", defaultURL, "Server base URL")
	return cmd
}

// doAndPrint sends req, copies the response body to stdout and turns non-2xx
// statuses into an error.
func doAndPrint(cmd *cobra.Command, client *http.Client, req *http.Request) error {
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
