package crabnode

import (
	"context"
	"fmt"
	"os"

	"github.com/runletapp/crabnode/interfaces"
)

// Upload stores the file at path on the node and returns its content id.
// Progress is streamed to the observer under a fresh operation id.
func (m *Manager) Upload(ctx context.Context, path string) (string, error) {
	result, err := m.UploadFile(ctx, path)
	if err != nil {
		return "", err
	}

	return result.CID, nil
}

// UploadFile is Upload returning the content id with the size the node stored
func (m *Manager) UploadFile(ctx context.Context, path string) (*interfaces.UploadResult, error) {
	node, err := m.startedNode()
	if err != nil {
		return nil, err
	}

	size, err := checkSourceFile(path)
	if err != nil {
		return nil, err
	}

	op, err := m.progress.beginOperation()
	if err != nil {
		return nil, wrapError(ErrUpload, err)
	}
	defer op.end()

	op.emit(NewProgress(op.ID).WithMessage(fmt.Sprintf("Preparing upload of %s", path)))

	op.emit(NewProgress(op.ID).
		WithStage(StageUploading).
		WithBytes(0, sizeOf(size)).
		WithMessage(fmt.Sprintf("Starting upload of %d bytes", size)))

	onProgress := func(progress interfaces.TransferProgress) {
		total := progress.TotalBytes
		if total == nil {
			total = sizeOf(size)
		}

		op.emit(NewProgress(op.ID).
			WithStage(StageUploading).
			WithBytes(progress.BytesTransferred, total).
			WithMessage(fmt.Sprintf("Uploaded %d bytes", progress.BytesTransferred)))
	}

	log.Debugw("upload started", "operation", op.ID, "path", path, "size", size)

	result, err := node.Upload(ctx, path, onProgress)
	if err != nil {
		op.emit(NewProgress(op.ID).WithFailure(err.Error()).WithMessage("Upload failed"))
		op.end()

		log.Warnw("upload failed", "operation", op.ID, "path", path, "err", err)
		return nil, wrapError(ErrUpload, err)
	}

	op.emit(NewProgress(op.ID).
		WithStage(StageCompleted).
		WithBytes(result.Size, sizeOf(result.Size)).
		WithMessage("Upload completed successfully"))
	op.end()

	log.Infow("upload completed", "operation", op.ID, "cid", result.CID, "size", result.Size)
	return result, nil
}

// Download writes the content cid to savePath. Progress is streamed to the
// observer under a fresh operation id.
func (m *Manager) Download(ctx context.Context, cid string, savePath string) error {
	_, err := m.DownloadFile(ctx, cid, savePath)
	return err
}

// DownloadFile is Download returning the number of bytes written
func (m *Manager) DownloadFile(ctx context.Context, cid string, savePath string) (*interfaces.DownloadResult, error) {
	if cid == "" {
		return nil, newError(ErrInvalidCID, "CID cannot be empty")
	}

	if savePath == "" {
		return nil, newError(ErrIO, "save path cannot be empty")
	}

	node, err := m.startedNode()
	if err != nil {
		return nil, err
	}

	op, err := m.progress.beginOperation()
	if err != nil {
		return nil, wrapError(ErrDownload, err)
	}
	defer op.end()

	op.emit(NewProgress(op.ID).WithMessage(fmt.Sprintf("Preparing download of %s", cid)))

	op.emit(NewProgress(op.ID).
		WithStage(StageDownloading).
		WithMessage(fmt.Sprintf("Starting download of CID: %s", cid)))

	onProgress := func(progress interfaces.TransferProgress) {
		op.emit(NewProgress(op.ID).
			WithStage(StageDownloading).
			WithBytes(progress.BytesTransferred, progress.TotalBytes).
			WithMessage(fmt.Sprintf("Downloaded %d bytes", progress.BytesTransferred)))
	}

	log.Debugw("download started", "operation", op.ID, "cid", cid, "path", savePath)

	result, err := node.Download(ctx, cid, savePath, onProgress)
	if err != nil {
		op.emit(NewProgress(op.ID).WithFailure(err.Error()).WithMessage("Download failed"))
		op.end()

		log.Warnw("download failed", "operation", op.ID, "cid", cid, "err", err)
		return nil, wrapError(ErrDownload, err)
	}

	op.emit(NewProgress(op.ID).
		WithStage(StageCompleted).
		WithBytes(result.Size, sizeOf(result.Size)).
		WithMessage("Download completed successfully"))
	op.end()

	log.Infow("download completed", "operation", op.ID, "cid", cid, "size", result.Size)
	return result, nil
}

// checkSourceFile returns the size of the regular, readable file at path
func checkSourceFile(path string) (uint64, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, newError(ErrFileNotFound, path)
		}
		return 0, wrapError(ErrIO, err)
	}

	if !stat.Mode().IsRegular() {
		return 0, newError(ErrFileNotFound, path)
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, newError(ErrFileNotFound, path)
	}
	file.Close()

	return uint64(stat.Size()), nil
}
