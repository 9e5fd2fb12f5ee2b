package mariadb

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(150) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(150) NOT NULL DEFAULT '',
		last_name VARCHAR(150) NOT NULL DEFAULT '',
		email VARCHAR(254) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'patient',
		phone_number VARCHAR(15) NULL,
		address TEXT NULL,
		date_of_birth DATE NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL UNIQUE,
		is_verified TINYINT(1) NOT NULL DEFAULT 0,
		emergency_contact VARCHAR(15) NULL,
		blood_group VARCHAR(5) NULL,
		medical_history TEXT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL UNIQUE,
		patient_id VARCHAR(20) NOT NULL UNIQUE,
		blood_group VARCHAR(5) NULL,
		height DECIMAL(5,2) NULL,
		weight DECIMAL(5,2) NULL,
		medical_history TEXT NULL,
		allergies TEXT NULL,
		emergency_contact_number VARCHAR(15) NULL,
		is_admitted TINYINT(1) NOT NULL DEFAULT 0,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS doctors (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL UNIQUE,
		doctor_id VARCHAR(20) NOT NULL UNIQUE,
		specialization VARCHAR(50) NOT NULL DEFAULT 'general',
		license_number VARCHAR(50) NOT NULL UNIQUE,
		qualification VARCHAR(200) NOT NULL DEFAULT '',
		experience_years INT NOT NULL DEFAULT 0,
		consultation_fee DECIMAL(10,2) NOT NULL DEFAULT 0,
		availability TEXT NULL,
		bio TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS staff (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL UNIQUE,
		staff_id VARCHAR(20) NOT NULL UNIQUE,
		department VARCHAR(50) NOT NULL,
		position VARCHAR(100) NOT NULL,
		salary DECIMAL(10,2) NOT NULL DEFAULT 0,
		joining_date DATE NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id INT AUTO_INCREMENT PRIMARY KEY,
		patient_id INT NOT NULL,
		doctor_id INT NOT NULL,
		appointment_date DATE NOT NULL,
		appointment_time TIME NOT NULL,
		reason TEXT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		temp DECIMAL(4,1) NULL,
		bp VARCHAR(20) NULL,
		pulse INT NULL,
		respiratory_rate INT NULL,
		notes TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_appointments_status (status),
		INDEX idx_appointments_doctor_date (doctor_id, appointment_date),
		FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE,
		FOREIGN KEY (doctor_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS vitals (
		id INT AUTO_INCREMENT PRIMARY KEY,
		patient_id INT NOT NULL,
		recorded_by INT NULL,
		temperature DECIMAL(4,1) NOT NULL,
		bp VARCHAR(15) NOT NULL,
		pulse INT UNSIGNED NOT NULL,
		weight DECIMAL(5,2) NOT NULL,
		respiratory_rate INT UNSIGNED NULL,
		spo2 INT UNSIGNED NULL,
		recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE,
		FOREIGN KEY (recorded_by) REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS medical_records (
		id INT AUTO_INCREMENT PRIMARY KEY,
		patient_id INT NOT NULL,
		doctor_id INT NULL,
		appointment_id INT NULL,
		diagnosis TEXT NOT NULL,
		clinical_notes TEXT NULL,
		prescribed_medicines TEXT NULL,
		ordered_tests TEXT NULL,
		requires_admission TINYINT(1) NOT NULL DEFAULT 0,
		pharmacy_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		visit_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE,
		FOREIGN KEY (doctor_id) REFERENCES users(id) ON DELETE SET NULL,
		FOREIGN KEY (appointment_id) REFERENCES appointments(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lab_requests (
		id INT AUTO_INCREMENT PRIMARY KEY,
		patient_id INT NULL,
		doctor_id INT NULL,
		appointment_id INT NULL,
		test_name VARCHAR(200) NOT NULL,
		priority VARCHAR(10) NOT NULL DEFAULT 'normal',
		clinical_notes TEXT NULL,
		findings TEXT NULL,
		attachment VARCHAR(255) NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_lab_requests_status (status),
		FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE,
		FOREIGN KEY (doctor_id) REFERENCES users(id) ON DELETE SET NULL,
		FOREIGN KEY (appointment_id) REFERENCES appointments(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reagents (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		stock_quantity INT UNSIGNED NOT NULL DEFAULT 0,
		min_threshold INT UNSIGNED NOT NULL DEFAULT 10,
		last_restocked DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS medicines (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(200) NOT NULL,
		category VARCHAR(100) NOT NULL DEFAULT '',
		quantity INT UNSIGNED NOT NULL DEFAULT 0,
		reorder_level INT UNSIGNED NOT NULL DEFAULT 10,
		price_per_unit DECIMAL(10,2) NOT NULL,
		expiry_date DATE NULL,
		last_updated DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_medicines_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS prescriptions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		patient_id INT NOT NULL,
		doctor_id INT NULL,
		appointment_id INT NULL,
		medication_name VARCHAR(255) NOT NULL,
		dosage VARCHAR(100) NOT NULL DEFAULT '',
		frequency VARCHAR(100) NOT NULL DEFAULT '',
		duration VARCHAR(100) NOT NULL DEFAULT '',
		quantity INT UNSIGNED NOT NULL DEFAULT 1,
		price DECIMAL(10,2) NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_prescriptions_status (status),
		FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE,
		FOREIGN KEY (doctor_id) REFERENCES users(id) ON DELETE SET NULL,
		FOREIGN KEY (appointment_id) REFERENCES appointments(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS dispensing_logs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		pharmacist_id INT NULL,
		patient_name VARCHAR(255) NOT NULL,
		medication_name VARCHAR(255) NOT NULL,
		quantity_dispensed INT UNSIGNED NOT NULL,
		notes TEXT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (pharmacist_id) REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bills (
		id INT AUTO_INCREMENT PRIMARY KEY,
		bill_number VARCHAR(20) NOT NULL UNIQUE,
		patient_id INT NOT NULL,
		appointment_id INT NULL,
		bill_type VARCHAR(20) NOT NULL,
		description TEXT NOT NULL,
		amount DECIMAL(10,2) NOT NULL,
		discount DECIMAL(10,2) NOT NULL DEFAULT 0,
		total_amount DECIMAL(10,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_by INT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_bills_status (status),
		INDEX idx_bills_appointment (appointment_id, bill_type),
		FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE,
		FOREIGN KEY (appointment_id) REFERENCES appointments(id) ON DELETE SET NULL,
		FOREIGN KEY (created_by) REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id INT AUTO_INCREMENT PRIMARY KEY,
		bill_id INT NOT NULL,
		payment_reference VARCHAR(100) NOT NULL UNIQUE,
		amount DECIMAL(10,2) NOT NULL,
		payment_method VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		paystack_reference VARCHAR(100) NULL UNIQUE,
		processed_by INT NULL,
		notes TEXT NULL,
		transaction_date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (bill_id) REFERENCES bills(id) ON DELETE CASCADE,
		FOREIGN KEY (processed_by) REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wards (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		category VARCHAR(50) NOT NULL,
		rate_per_night DECIMAL(10,2) NOT NULL DEFAULT 50.00,
		total_beds INT UNSIGNED NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admissions (
		id INT AUTO_INCREMENT PRIMARY KEY,
		patient_id INT NOT NULL,
		ward_id INT NOT NULL,
		bed_number VARCHAR(10) NOT NULL,
		reason TEXT NOT NULL,
		admitted_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		discharged_at DATETIME NULL,
		is_discharged TINYINT(1) NOT NULL DEFAULT 0,
		FOREIGN KEY (patient_id) REFERENCES patients(id) ON DELETE CASCADE,
		FOREIGN KEY (ward_id) REFERENCES wards(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS ward_vitals (
		id INT AUTO_INCREMENT PRIMARY KEY,
		admission_id INT NOT NULL,
		nurse_id INT NULL,
		temperature DECIMAL(4,1) NOT NULL,
		blood_pressure VARCHAR(20) NOT NULL,
		pulse_rate INT UNSIGNED NOT NULL,
		notes TEXT NULL,
		recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (admission_id) REFERENCES admissions(id) ON DELETE CASCADE,
		FOREIGN KEY (nurse_id) REFERENCES users(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		action VARCHAR(255) NOT NULL,
		details TEXT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS contact_messages (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		email VARCHAR(254) NOT NULL,
		subject VARCHAR(200) NOT NULL,
		message TEXT NOT NULL,
		response TEXT NULL,
		is_read TINYINT(1) NOT NULL DEFAULT 0,
		is_resolved TINYINT(1) NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS hospital_settings (
		id INT PRIMARY KEY,
		hospital_name VARCHAR(200) NOT NULL DEFAULT 'City General Hospital',
		maintenance_mode TINYINT(1) NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`INSERT IGNORE INTO hospital_settings (id) VALUES (1)`,
}

// Migrate applies the schema and returns the number of statements executed.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return i, fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return len(schema), nil
}
