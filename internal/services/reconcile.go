// Package services holds background workers supporting the HTTP layer.
package services

import (
	"emberlink/internal/db"
	"emberlink/internal/models"
	"log"
	"sync"
	"time"
)

type targetKind int

const (
	targetPost targetKind = iota
	targetComment
)

type target struct {
	kind targetKind
	id   int64
}

// Reconciler recomputes the denormalized points and comment_count
// columns from the upvote/comment rows, so any drift in the running
// totals self-heals shortly after the mutation that caused it.
type Reconciler struct {
	queue   chan target
	pending map[target]bool
	mu      sync.Mutex
}

var (
	reconciler *Reconciler
	once       sync.Once
)

// GetReconciler returns the singleton worker, starting it on first use.
func GetReconciler() *Reconciler {
	once.Do(func() {
		reconciler = &Reconciler{
			queue:   make(chan target, 1000), // buffered so handlers never block
			pending: make(map[target]bool),
		}
		go reconciler.worker()
	})
	return reconciler
}

// SchedulePost queues a post for reconciliation (deduplicated).
func (r *Reconciler) SchedulePost(postID int64) {
	r.schedule(target{kind: targetPost, id: postID})
}

// ScheduleComment queues a comment for reconciliation (deduplicated).
func (r *Reconciler) ScheduleComment(commentID int64) {
	r.schedule(target{kind: targetComment, id: commentID})
}

func (r *Reconciler) schedule(t target) {
	r.mu.Lock()
	if r.pending[t] {
		r.mu.Unlock()
		return
	}
	r.pending[t] = true
	r.mu.Unlock()

	select {
	case r.queue <- t:
	default:
		// Queue full; drop and clear the pending mark
		r.mu.Lock()
		delete(r.pending, t)
		r.mu.Unlock()
		log.Printf("reconcile queue full, skipping %v", t)
	}
}

func (r *Reconciler) worker() {
	batch := make([]target, 0, 50)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case t := <-r.queue:
			batch = append(batch, t)
			if len(batch) >= 50 {
				r.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				r.processBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (r *Reconciler) processBatch(batch []target) {
	for _, t := range batch {
		switch t.kind {
		case targetPost:
			r.reconcilePost(t.id)
		case targetComment:
			r.reconcileComment(t.id)
		}

		r.mu.Lock()
		delete(r.pending, t)
		r.mu.Unlock()
	}
}

func (r *Reconciler) reconcilePost(postID int64) {
	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		// Deleted since it was queued
		return
	}

	var upvotes int64
	db.DB.Model(&models.PostUpvote{}).Where("post_id = ?", postID).Count(&upvotes)

	var comments int64
	db.DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&comments)

	err := db.DB.Model(&post).UpdateColumns(map[string]interface{}{
		"points":        upvotes,
		"comment_count": comments,
	}).Error
	if err != nil {
		log.Printf("reconcile post %d failed: %v", postID, err)
	}
}

func (r *Reconciler) reconcileComment(commentID int64) {
	var comment models.Comment
	if err := db.DB.First(&comment, commentID).Error; err != nil {
		return
	}

	var upvotes int64
	db.DB.Model(&models.CommentUpvote{}).Where("comment_id = ?", commentID).Count(&upvotes)

	var replies int64
	db.DB.Model(&models.Comment{}).Where("parent_comment_id = ?", commentID).Count(&replies)

	err := db.DB.Model(&comment).UpdateColumns(map[string]interface{}{
		"points":        upvotes,
		"comment_count": replies,
	}).Error
	if err != nil {
		log.Printf("reconcile comment %d failed: %v", commentID, err)
	}
}
