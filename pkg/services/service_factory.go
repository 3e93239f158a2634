package services

import (
	"sync"
)

// ServiceFactory provides a centralized way to create and share services
type ServiceFactory struct {
	datasetService DatasetService
	mu             sync.RWMutex
	initialized    bool
}

// NewServiceFactory creates a new service factory instance
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// Initialize initializes all services with their dependencies
func (sf *ServiceFactory) Initialize() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if sf.initialized {
		return nil
	}

	sf.datasetService = NewDatasetService()
	sf.initialized = true
	return nil
}

// DatasetService returns the dataset service instance, initializing the factory
// on first use
func (sf *ServiceFactory) DatasetService() (DatasetService, error) {
	if !sf.IsInitialized() {
		if err := sf.Initialize(); err != nil {
			return nil, err
		}
	}

	sf.mu.RLock()
	defer sf.mu.RUnlock()
	if sf.datasetService == nil {
		return nil, ErrServiceNotInitialized
	}
	return sf.datasetService, nil
}

// Shutdown releases all services
func (sf *ServiceFactory) Shutdown() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	sf.datasetService = nil
	sf.initialized = false
	return nil
}

// IsInitialized returns whether the factory has been initialized
func (sf *ServiceFactory) IsInitialized() bool {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.initialized
}

// ServiceInfo represents information about a service
type ServiceInfo struct {
	Name        string
	Description string
	Available   bool
}

// ListAvailableServices returns information about all available services
func (sf *ServiceFactory) ListAvailableServices() []ServiceInfo {
	return []ServiceInfo{
		{
			Name:        "dataset",
			Description: "Dictionary description, record dump and export of SPSS system files",
			Available:   true,
		},
	}
}
