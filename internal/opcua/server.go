package opcua

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/building-simulator/internal/core"
)

const (
	applicationURI = "urn:building-simulator:bms"
	productURI     = "urn:building-simulator"
)

// NamespaceNodes holds nodes for a specific namespace
type NamespaceNodes struct {
	Namespace  uint16
	FolderName string
	FolderDesc string
	NodeDefs   []core.NodeDefinition // Kept for deferred registration
	VarNodes   map[string]*server.VariableNode
	Values     map[string]interface{}
}

// Server wraps the OPC UA server and keeps the last value of every node.
// Without a running server it still stores values ("value storage mode").
type Server struct {
	srv    *server.Server
	port   int
	name   string
	pkiDir string
	mu     sync.RWMutex

	namespaces map[uint16]*NamespaceNodes
}

// NewServer creates a new OPC UA server
func NewServer(port int, simulatorName string) *Server {
	return &Server{
		port:       port,
		name:       simulatorName,
		pkiDir:     "./pki",
		namespaces: make(map[uint16]*NamespaceNodes),
	}
}

func (s *Server) certFile() string { return filepath.Join(s.pkiDir, "server.crt") }
func (s *Server) keyFile() string  { return filepath.Join(s.pkiDir, "server.key") }

// ensurePKI creates the PKI directory and a self-signed certificate if they don't exist
func (s *Server) ensurePKI() error {
	if _, err := os.Stat(s.certFile()); err == nil {
		log.Info().Str("certFile", s.certFile()).Msg("Using existing PKI certificates")
		return nil
	}

	log.Info().Msg("Generating self-signed certificates for OPC UA server")

	if err := os.MkdirAll(s.pkiDir, 0755); err != nil {
		return fmt.Errorf("failed to create PKI directory: %w", err)
	}

	return createSelfSignedCert(s.name, s.certFile(), s.keyFile())
}

// createSelfSignedCert generates a self-signed certificate for the OPC UA server
func createSelfSignedCert(appName, certPath, keyPath string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   appName,
			Organization: []string{"Building Simulator"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost", appName, "building-simulator"},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("0.0.0.0")},
	}

	// OPC UA clients match the application URI against this SAN
	template.URIs = []*url.URL{
		{Scheme: "urn", Opaque: "building-simulator:bms"},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	if err := writePEM(certPath, "CERTIFICATE", certDER); err != nil {
		return err
	}
	if err := writePEM(keyPath, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(privateKey)); err != nil {
		return err
	}

	log.Info().
		Str("certPath", certPath).
		Str("keyPath", keyPath).
		Msg("Self-signed certificates generated successfully")

	return nil
}

func writePEM(path, blockType string, der []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// Start starts the OPC UA server. Failures to create the server are logged
// and leave the server in value storage mode.
func (s *Server) Start(ctx context.Context) error {
	endpoint := fmt.Sprintf("opc.tcp://0.0.0.0:%d", s.port)

	log.Info().
		Int("port", s.port).
		Str("endpoint", endpoint).
		Msg("Starting OPC UA server")

	if err := s.ensurePKI(); err != nil {
		log.Warn().Err(err).Msg("Failed to create PKI - OPC UA server disabled")
		return nil
	}

	var srv *server.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Warn().
					Interface("panic", r).
					Msg("OPC UA server creation panicked - running in value storage mode only")
			}
		}()

		var err error
		srv, err = server.New(
			ua.ApplicationDescription{
				ApplicationURI:  applicationURI,
				ProductURI:      productURI,
				ApplicationName: ua.LocalizedText{Text: s.name, Locale: "en"},
				ApplicationType: ua.ApplicationTypeServer,
			},
			s.certFile(),
			s.keyFile(),
			endpoint,
			server.WithAnonymousIdentity(true),
			server.WithSecurityPolicyNone(true),
			server.WithInsecureSkipVerify(),
		)
		if err != nil {
			log.Warn().
				Err(err).
				Msg("OPC UA server creation failed - running in value storage mode only")
			srv = nil
		}
	}()

	if srv == nil {
		return nil
	}

	s.mu.Lock()
	s.srv = srv
	s.registerPendingNamespaces()
	s.mu.Unlock()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("OPC UA server panic")
			}
		}()
		if err := srv.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("OPC UA server error")
		}
	}()

	log.Info().Msg("OPC UA server started successfully")
	return nil
}

// Stop stops the OPC UA server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.RLock()
	srv := s.srv
	s.mu.RUnlock()

	if srv != nil {
		return srv.Close()
	}
	return nil
}

// Running reports whether the OPC UA endpoint is serving
func (s *Server) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.srv != nil
}

// RegisterNamespace creates a namespace with a root folder and variable nodes.
// Before Start the definitions are stored and registered once the server exists.
func (s *Server) RegisterNamespace(nsIndex uint16, folderName, folderDesc string, nodes []core.NodeDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.namespaces[nsIndex]; exists {
		return fmt.Errorf("namespace %d already registered", nsIndex)
	}

	ns := &NamespaceNodes{
		Namespace:  nsIndex,
		FolderName: folderName,
		FolderDesc: folderDesc,
		NodeDefs:   nodes,
		VarNodes:   make(map[string]*server.VariableNode),
		Values:     make(map[string]interface{}),
	}
	for _, nodeDef := range nodes {
		ns.Values[nodeDef.Name] = nodeDef.InitialValue
	}
	s.namespaces[nsIndex] = ns

	if s.srv != nil {
		s.addNamespaceNodes(ns)
	}
	return nil
}

// UpdateNamespaceValues updates values of a namespace
func (s *Server) UpdateNamespaceValues(nsIndex uint16, values map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[nsIndex]
	if !ok {
		return
	}

	now := time.Now().UTC()
	for name, value := range values {
		ns.Values[name] = value
		if varNode, ok := ns.VarNodes[name]; ok {
			varNode.SetValue(ua.NewDataValue(value, 0, now, 0, now, 0))
		}
	}
}

// GetNamespaceValue returns a value from a namespace
func (s *Server) GetNamespaceValue(nsIndex uint16, name string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[nsIndex]
	if !ok {
		return nil, false
	}

	value, ok := ns.Values[name]
	return value, ok
}

// GetNamespaceValues returns a copy of all values of a namespace
func (s *Server) GetNamespaceValues(nsIndex uint16) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ns, ok := s.namespaces[nsIndex]
	if !ok {
		return nil
	}

	values := make(map[string]interface{}, len(ns.Values))
	for name, value := range ns.Values {
		values[name] = value
	}
	return values
}

// registerPendingNamespaces adds stored namespaces once the server is available.
// Caller holds s.mu.
func (s *Server) registerPendingNamespaces() {
	nodeCount := 0
	for _, ns := range s.namespaces {
		s.addNamespaceNodes(ns)
		nodeCount += len(ns.NodeDefs)
	}
	log.Info().Int("count", nodeCount).Msg("OPC UA nodes registered in address space")
}

// addNamespaceNodes creates the folder and variable nodes of ns. Caller holds s.mu.
func (s *Server) addNamespaceNodes(ns *NamespaceNodes) {
	nm := s.srv.NamespaceManager()
	nsIndex := ns.Namespace

	folder := server.NewObjectNode(
		s.srv,
		ua.NodeIDString{NamespaceIndex: nsIndex, ID: ns.FolderName},
		ua.QualifiedName{NamespaceIndex: nsIndex, Name: ns.FolderName},
		ua.LocalizedText{Text: ns.FolderName},
		ua.LocalizedText{Text: ns.FolderDesc},
		nil,
		[]ua.Reference{
			{
				ReferenceTypeID: ua.ReferenceTypeIDOrganizes,
				IsInverse:       true,
				TargetID:        ua.ExpandedNodeID{NodeID: ua.ObjectIDObjectsFolder},
			},
		},
		0,
	)
	nm.AddNode(folder)

	now := time.Now().UTC()
	for _, nodeDef := range ns.NodeDefs {
		varNode := server.NewVariableNode(
			s.srv,
			ua.NodeIDString{NamespaceIndex: nsIndex, ID: ns.FolderName + "." + nodeDef.Name},
			ua.QualifiedName{NamespaceIndex: nsIndex, Name: nodeDef.Name},
			ua.LocalizedText{Text: nodeDef.DisplayName},
			ua.LocalizedText{Text: nodeDef.Description},
			nil,
			[]ua.Reference{
				{
					ReferenceTypeID: ua.ReferenceTypeIDHasComponent,
					IsInverse:       true,
					TargetID:        ua.ExpandedNodeID{NodeID: ua.NodeIDString{NamespaceIndex: nsIndex, ID: ns.FolderName}},
				},
			},
			ua.NewDataValue(ns.Values[nodeDef.Name], 0, now, 0, now, 0),
			core.OPCUADataType(nodeDef.DataType),
			ua.ValueRankScalar,
			[]uint32{},
			ua.AccessLevelsCurrentRead,
			250.0,
			false,
			nil,
		)
		nm.AddNode(varNode)
		ns.VarNodes[nodeDef.Name] = varNode
	}

	log.Info().
		Uint16("namespace", nsIndex).
		Str("folder", ns.FolderName).
		Int("nodes", len(ns.NodeDefs)).
		Msg("Registered OPC UA namespace")
}
