package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"schemaforge/src/auth"
	"schemaforge/src/directors"
	"schemaforge/src/engine"
	"schemaforge/src/settings"

	"go.uber.org/zap"
)

// Server is the TCP admin surface for a schema editing session. Clients
// speak a line protocol of schema commands; exactly one editor session is
// expected to mutate the graph at a time.
type Server struct {
	Host              string
	Port              int
	Listener          net.Listener
	AuthEnabled       bool
	Users             *auth.UserStore
	ActiveConnections map[string]*Connection
	mu                sync.Mutex
	Running           bool
	schemaService     *directors.SchemaService
	logger            *zap.SugaredLogger
}

// Connection represents an active client connection
type Connection struct {
	ID         string
	Conn       net.Conn
	Reader     *bufio.Reader
	Writer     *bufio.Writer
	User       string
	Authorized bool
	LastActive time.Time
	Logger     *zap.SugaredLogger
}

// ConnectionString is the parsed client handshake:
// schemaforge://host:port:business:username:password
type ConnectionString struct {
	Host     string
	Port     string
	Business string
	Username string
	Password string
}

// InitServer initializes the SchemaForge server
func InitServer(config *settings.Arguments) (*Server, error) {

	var logger *zap.Logger
	var err error

	if config.Debug {
		// Development configuration with more verbose output
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
		logger, err = z.Build()
	} else {
		// Production configuration
		logger, err = zap.NewProduction()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Create a sugared logger for easier API
	sugar := logger.Sugar()

	// Replace standard log with zap
	zap.ReplaceGlobals(logger)

	// Create the graph store
	graphStore, err := engine.NewGraphStore(config.DataDir, sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph store: %w", err)
	}

	// Create services
	schemaService, err := directors.NewSchemaService(graphStore, sugar, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema service: %w", err)
	}
	pipelineService := directors.NewPipelineService(schemaService, sugar, config)

	// Initialize the singleton
	directors.InitServiceManager(schemaService, pipelineService, sugar)

	server := &Server{
		Host:              config.Host,
		Port:              config.Port,
		AuthEnabled:       config.AuthEnabled,
		Users:             auth.NewUserStore(),
		ActiveConnections: make(map[string]*Connection),
		schemaService:     schemaService,
		logger:            sugar,
	}

	return server, nil
}

// Start begins listening for incoming connections
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("error starting server on %s: %w", addr, err)
	}

	s.Listener = listener
	s.Running = true

	log.Printf("SchemaForge server listening on %s", addr)

	go s.acceptConnections()

	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	s.Running = false

	// Close all active connections
	s.mu.Lock()
	for id, conn := range s.ActiveConnections {
		conn.Conn.Close()
		delete(s.ActiveConnections, id)
	}
	s.mu.Unlock()

	var err error
	if s.Listener != nil {
		err = s.Listener.Close()
	}

	wg.Wait()

	if dirty, derr := s.schemaService.HasUnsavedChanges(); derr == nil && dirty {
		s.logger.Warn("Shutting down with unsaved schema changes")
	}

	s.logger.Info("Server shutdown complete")
	s.logger.Sync()

	return err
}

// AddUser adds an admin user allowed to open a session
func (s *Server) AddUser(username, password string) {
	if err := s.Users.AddUser(username, password); err != nil {
		s.logger.Warnf("Could not add user '%s': %v", username, err)
	}
}

var wg sync.WaitGroup

// acceptConnections handles incoming connection requests
func (s *Server) acceptConnections() {
	s.logger.Info("Server started accepting connections",
		zap.String("host", s.Host),
		zap.Int("port", s.Port))

	for s.Running {
		conn, err := s.Listener.Accept()
		if err != nil {
			if s.Running { // Only log if we're still supposed to be running
				s.logger.Errorw("Error accepting connection", "error", err)
			}
			continue
		}
		wg.Add(1)

		s.logger.Info("New connection received",
			zap.String("remoteAddr", conn.RemoteAddr().String()))

		go func(c net.Conn) {
			defer wg.Done()
			s.handleConnection(c)
		}(conn)
	}
}

// handleConnection processes a single client connection
func (s *Server) handleConnection(conn net.Conn) {
	connID := generateConnectionID()
	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	connLogger := s.logger
	if settings.GetSettings().Debug {
		connLogger = connLogger.With(
			zap.String("connID", connID),
			zap.String("remoteAddr", conn.RemoteAddr().String()))
	}

	connection := &Connection{
		ID:         connID,
		Conn:       conn,
		Reader:     reader,
		Writer:     writer,
		Authorized: !s.AuthEnabled, // If auth is disabled, connection is automatically authorized
		LastActive: time.Now(),
		Logger:     connLogger,
	}

	// Register the connection
	s.mu.Lock()
	s.ActiveConnections[connID] = connection
	s.mu.Unlock()

	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.ActiveConnections, connID)
		s.mu.Unlock()
		connLogger.Infof("Connection closed: %s", connID)
		connLogger.Sync()
	}()

	// Send welcome message
	writer.WriteString("SchemaForge ready\n")
	writer.Flush()

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		connection.LastActive = time.Now()

		// The first command of an authenticated session is the
		// connection string
		if strings.HasPrefix(line, "schemaforge://") {
			connStr, err := parseConnectionString(line)
			if err != nil {
				connLogger.Errorw("Error parsing connection string", "error", err, "input", line)
				sendError(writer, fmt.Sprintf("Invalid connection string: %v", err))
				return
			}

			if s.AuthEnabled && !s.Users.VerifyPassword(connStr.Username, connStr.Password) {
				sendError(writer, "Authentication failed")
				return
			}

			connection.Authorized = true
			connection.User = connStr.Username
			connLogger.Infow("Client authenticated",
				"user", connection.User,
				"business", connStr.Business)

			sendSuccess(writer, "Authentication successful")
			continue
		}

		if !connection.Authorized {
			sendError(writer, "Not authenticated")
			continue
		}

		if strings.EqualFold(line, "QUIT") {
			sendSuccess(writer, "Goodbye")
			return
		}

		result, err := s.processCommand(connection, line)
		if err != nil {
			sendError(writer, err.Error())
		} else {
			sendResult(writer, result, connLogger)
		}
	}
}

// processCommand routes a client command through the command director
func (s *Server) processCommand(conn *Connection, command string) (interface{}, error) {
	logger := s.logger.With("connID", conn.ID)
	logger.Infow("Received from client", "data", command)

	serviceManager := directors.GetServiceManager()
	return directors.CommandDirector(*serviceManager, command, logger)
}

func parseConnectionString(connStr string) (ConnectionString, error) {
	result := ConnectionString{}

	connStr = strings.TrimPrefix(connStr, "schemaforge://")
	// The connection string is host:port:business:username:password
	parts := strings.Split(connStr, ":")
	if len(parts) < 5 {
		return result, fmt.Errorf("connection string must be host:port:business:username:password")
	}

	result.Host = parts[0]
	result.Port = parts[1]
	result.Business = parts[2]
	result.Username = parts[3]
	result.Password = parts[4]

	if result.Business == "" {
		return result, fmt.Errorf("business id cannot be empty")
	}

	return result, nil
}

// Helper functions
func sendError(writer *bufio.Writer, message string) {
	response := map[string]interface{}{
		"status":  "error",
		"message": message,
	}
	jsonResponse, _ := json.Marshal(response)
	writer.WriteString(string(jsonResponse) + "\n")
	writer.Flush()
}

func sendSuccess(writer *bufio.Writer, message string) {
	response := map[string]interface{}{
		"status":  "success",
		"message": message,
	}
	jsonResponse, _ := json.Marshal(response)
	writer.WriteString(string(jsonResponse) + "\n")
	writer.Flush()
}

func sendResult(writer *bufio.Writer, result interface{}, logger *zap.SugaredLogger) {
	switch typedResult := result.(type) {
	case *string:
		if typedResult != nil {
			writer.WriteString(*typedResult + "\n")
			writer.Flush()
			return
		}
	case string:
		writer.WriteString(typedResult + "\n")
		writer.Flush()
		return
	default:
		data, _ := json.Marshal(result)
		logger.Infof("Sending result: %s", data)
		writer.WriteString(string(data) + "\n")
		writer.Flush()
	}
}

func generateConnectionID() string {
	now := time.Now().UnixNano()
	return fmt.Sprintf("conn_%x", now)
}
