package cmd

import (
	"fmt"
	"log/slog"
	"sync"

	httpin "workorders/internal/adapters/in/http"
	kafkain "workorders/internal/adapters/in/kafka"
	kafkaout "workorders/internal/adapters/out/kafka"
	"workorders/internal/adapters/out/metrics"
	"workorders/internal/adapters/out/postgres"
	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/application/usecases/queries"
	"workorders/internal/core/ports"
	"workorders/internal/jobs"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// CompositionRoot builds every component once and hands out the shared
// instances. Background components are collected as jobs while they are built.
type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	kafka      *kafkaout.Client
	registerer prometheus.Registerer
	logger     *slog.Logger

	jobs []jobs.Job

	localOnce  sync.Once
	local      commands.StateCommandDispatcher
	frontOnce  sync.Once
	front      commands.StateCommandDispatcher
	frontErr   error
	serverOnce sync.Once
	server     *metrics.ServerMetrics
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger, registerer prometheus.Registerer) *CompositionRoot {
	return &CompositionRoot{
		config:     config,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		kafka:      kafkaout.NewClient(config.KafkaHost),
		registerer: registerer,
		logger:     logger,
	}
}

func (c *CompositionRoot) CreateStateCommandHandler() *commands.StateCommandHandler {
	var f commands.StateCommandUoWFactory = FuncStateCommandUoWFactory(func() commands.StateCommandUoW {
		return c.uowFactory.Create()
	})
	return commands.NewStateCommandHandler(f, c.createEventPublisher(), c.logger,
		commands.WithMaxAttempts(c.config.MaxAttempts))
}

// createEventPublisher returns nil without Kafka; the handler then drops events.
func (c *CompositionRoot) createEventPublisher() ports.WorkOrderEventPublisher {
	if !c.kafka.Enabled() {
		return nil
	}
	return kafkaout.NewEventPublisher(c.kafka.NewWriter(c.config.KafkaEventsTopic))
}

// LocalDispatcher runs commands in this process. Executions are counted here so
// a command is measured once no matter how it arrived.
func (c *CompositionRoot) LocalDispatcher() commands.StateCommandDispatcher {
	c.localOnce.Do(func() {
		c.local = metrics.NewInstrumentedDispatcher(
			commands.NewLocalDispatcher(c.CreateStateCommandHandler()),
			metrics.NewDispatcherMetrics(c.registerer),
		)
	})
	return c.local
}

// Dispatcher is what the HTTP server and the scheduler send commands to.
func (c *CompositionRoot) Dispatcher() (commands.StateCommandDispatcher, error) {
	c.frontOnce.Do(func() {
		if c.config.DispatchMode != DispatchRemote {
			c.front = c.LocalDispatcher()
			return
		}
		if !c.kafka.Enabled() {
			c.frontErr = fmt.Errorf("remote dispatch: %w", kafkaout.ErrDisabled)
			return
		}

		// Every instance needs every reply addressed to it, so replies are
		// tailed without a consumer group.
		remote := kafkaout.NewRemoteDispatcher(
			c.kafka.NewWriter(c.config.KafkaCommandsTopic),
			c.kafka.NewTailReader(c.config.KafkaRepliesTopic),
			c.config.KafkaRepliesTopic,
			c.config.DispatchTimeout,
			c.logger,
		)
		c.jobs = append(c.jobs, remote)
		c.front = remote
	})
	return c.front, c.frontErr
}

// CreateCommandConsumer returns nil when this instance does not execute
// commands from the bus.
func (c *CompositionRoot) CreateCommandConsumer() *kafkain.CommandConsumer {
	if !c.kafka.Enabled() || !c.config.KafkaConsumeEnabled {
		return nil
	}
	return kafkain.NewCommandConsumer(
		c.kafka.NewReader(c.config.KafkaCommandsTopic, c.config.KafkaConsumerGroup),
		c.kafka.NewWriter(""),
		c.LocalDispatcher(),
		c.config.KafkaRepliesTopic,
		c.logger,
	)
}

func (c *CompositionRoot) CreateScheduler() (*jobs.Scheduler, error) {
	specs, err := jobs.LoadTasks(c.config.SchedulerFile)
	if err != nil {
		return nil, err
	}
	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, err
	}

	finder := c.CreateListWorkOrdersQueryHandler()
	tasks := make([]*jobs.PollingTask, 0, len(specs))
	for _, spec := range specs {
		tasks = append(tasks, jobs.NewPollingTask(spec, finder, dispatcher, c.logger))
	}
	return jobs.NewScheduler(tasks, c.config.SchedulerTimeout, c.logger), nil
}

// CreateJobManager builds every background component in start order: the
// dispatcher's reply reader before anything that sends commands.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	if _, err := c.Dispatcher(); err != nil {
		return nil, err
	}
	if consumer := c.CreateCommandConsumer(); consumer != nil {
		c.jobs = append(c.jobs, consumer)
	}
	scheduler, err := c.CreateScheduler()
	if err != nil {
		return nil, err
	}
	c.jobs = append(c.jobs, scheduler)

	return jobs.NewJobManager(c.jobs...), nil
}

func (c *CompositionRoot) CreateServer() (*httpin.Server, error) {
	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, err
	}
	createEmployee := c.CreateCreateEmployeeCommandHandler()
	removeEmployee := c.CreateRemoveEmployeeCommandHandler()

	return httpin.NewServer(
		dispatcher,
		&createEmployee,
		&removeEmployee,
		c.CreateGetWorkOrderQueryHandler(),
		c.CreateListWorkOrdersQueryHandler(),
		c.CreateGetAuditEntriesQueryHandler(),
		c.logger,
	), nil
}

func (c *CompositionRoot) ServerMetrics() *metrics.ServerMetrics {
	c.serverOnce.Do(func() {
		c.server = metrics.NewServerMetrics(c.registerer)
	})
	return c.server
}

func (c *CompositionRoot) CreateCreateEmployeeCommandHandler() commands.CreateEmployeeCommandHandler {
	var f commands.EmployeeUoWFactory = FuncEmployeeUoWFactory(func() commands.EmployeeUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateEmployeeCommandHandler(f)
}

func (c *CompositionRoot) CreateRemoveEmployeeCommandHandler() commands.RemoveEmployeeCommandHandler {
	var f commands.EmployeeUoWFactory = FuncEmployeeUoWFactory(func() commands.EmployeeUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRemoveEmployeeCommandHandler(f)
}

func (c *CompositionRoot) CreateGetWorkOrderQueryHandler() queries.GetWorkOrderQueryHandler {
	return queries.NewGetWorkOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListWorkOrdersQueryHandler() queries.ListWorkOrdersQueryHandler {
	return queries.NewListWorkOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAuditEntriesQueryHandler() queries.GetAuditEntriesQueryHandler {
	return queries.NewGetAuditEntriesQueryHandler(c.gormDB)
}

type FuncStateCommandUoWFactory func() commands.StateCommandUoW

func (f FuncStateCommandUoWFactory) Create() commands.StateCommandUoW {
	return f()
}

type FuncEmployeeUoWFactory func() commands.EmployeeUoW

func (f FuncEmployeeUoWFactory) Create() commands.EmployeeUoW {
	return f()
}
