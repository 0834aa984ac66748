package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				trigger_kind VARCHAR(50) NOT NULL,
				trigger_config JSONB NOT NULL DEFAULT '{}',
				active BOOLEAN NOT NULL DEFAULT false,
				run_count INTEGER NOT NULL DEFAULT 0,
				last_run_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflows_active ON workflows(active);
			CREATE INDEX idx_workflows_trigger_kind ON workflows(trigger_kind);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);

			CREATE TABLE action_steps (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				kind VARCHAR(50) NOT NULL,
				config JSONB NOT NULL DEFAULT '{}',
				step_order INTEGER NOT NULL,
				active BOOLEAN NOT NULL DEFAULT true,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_action_steps_workflow ON action_steps(workflow_id, step_order);

			-- Executions reference workflows without a foreign key: they are
			-- audit history and must survive workflow deletion.
			CREATE TABLE executions (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL,
				trigger_data JSONB NOT NULL DEFAULT '{}',
				status VARCHAR(20) NOT NULL CHECK (status IN ('running', 'completed', 'failed')),
				current_step INTEGER NOT NULL DEFAULT 0,
				results JSONB NOT NULL DEFAULT '[]',
				error_message TEXT,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_executions_workflow ON executions(workflow_id);
			CREATE INDEX idx_executions_status ON executions(status);
			CREATE INDEX idx_executions_started_at ON executions(started_at);
		`,
	}
}
