package connection

import (
	"errors"
	"time"

	"github.com/mlee/socialnet-backend/pkg/logger"
	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repo   Repository
	logger *logger.Logger
}

// NewService creates a new connection service
func NewService(repo Repository, log *logger.Logger) Service {
	return &service{
		repo:   repo,
		logger: log.WithComponent("connection-service"),
	}
}

func (s *service) Request(requesterID, addresseeID uuid.UUID) (*Connection, error) {
	if requesterID == addresseeID {
		return nil, errors.New("cannot connect to yourself")
	}

	// A pair has at most one connection, regardless of direction
	for _, pair := range [][2]uuid.UUID{{requesterID, addresseeID}, {addresseeID, requesterID}} {
		existing, err := s.repo.Find(pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, errors.New("connection already exists")
		}
	}

	conn := &Connection{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Create(conn); err != nil {
		s.logger.Error("Failed to create connection from " + requesterID.String() + " to " + addresseeID.String() + ": " + err.Error())
		return nil, err
	}

	s.logger.Info("Connection requested: " + requesterID.String() + " -> " + addresseeID.String())

	return conn, nil
}

func (s *service) Accept(requesterID, addresseeID uuid.UUID) error {
	conn, err := s.repo.Find(requesterID, addresseeID)
	if err != nil {
		return err
	}
	if conn == nil {
		return errors.New("connection not found")
	}
	if conn.Status != StatusPending {
		return errors.New("connection is not pending")
	}

	if err := s.repo.UpdateStatus(requesterID, addresseeID, StatusAccepted); err != nil {
		return err
	}

	s.logger.Info("Connection accepted: " + requesterID.String() + " -> " + addresseeID.String())

	return nil
}

func (s *service) Remove(userID, otherID uuid.UUID) error {
	for _, pair := range [][2]uuid.UUID{{userID, otherID}, {otherID, userID}} {
		conn, err := s.repo.Find(pair[0], pair[1])
		if err != nil {
			return err
		}
		if conn != nil {
			return s.repo.Delete(pair[0], pair[1])
		}
	}

	return errors.New("connection not found")
}

func (s *service) List(userID uuid.UUID) ([]*Connection, error) {
	return s.repo.FindForUser(userID)
}
