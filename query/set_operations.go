package query

var setOperations = []*Definition{
	{
		Label:   "Identify Patients Who Have Either Allergies or Chronic Conditions",
		Columns: []string{"PatientID", "Diagnosis"},
		SQL: `SELECT PatientID, Diagnosis
FROM MedicalRecord
WHERE Diagnosis LIKE '%Allerg%'
UNION
SELECT PatientID, Diagnosis
FROM MedicalRecord
WHERE Diagnosis LIKE '%Chronic%'`,
	},
	{
		Label:   "List Patients Who Have Had an Appointment but No Medical Records",
		Columns: []string{"PatientID"},
		SQL: `SELECT PatientID
FROM Appointment
EXCEPT
SELECT PatientID
FROM MedicalRecord`,
	},
	{
		Label:   "Compile a List of All Medical Personnel Involved in Patient Care",
		Columns: []string{"StaffID", "FullName", "Role"},
		SQL: `SELECT
    DoctorID AS StaffID,
    CONCAT(FirstName, ' ', LastName) AS FullName,
    'Doctor' AS Role
FROM Doctor
WHERE DoctorID IN (SELECT DoctorID FROM MedicalRecord)
UNION
SELECT
    NurseID AS StaffID,
    CONCAT(FirstName, ' ', LastName) AS FullName,
    'Nurse' AS Role
FROM Nurse
WHERE NurseID IN (SELECT AssignedNurseID FROM HospitalStay)`,
	},
	{
		Label:   "Identify Patients Who Have Both Inpatient and Outpatient Services",
		Columns: []string{"PatientID"},
		SQL: `SELECT PatientID FROM HospitalStay
INTERSECT
SELECT PatientID FROM Appointment`,
	},
}
